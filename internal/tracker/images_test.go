package tracker

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reforma-dev/reforma/internal/asset"
	"github.com/reforma-dev/reforma/internal/imagecodec"
	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/record"
)

func openAssets(t *testing.T) *asset.Store {
	t.Helper()
	s, err := asset.Open(filepath.Join(t.TempDir(), "images.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func pngImage(t *testing.T, w, h int, shade uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: shade, G: uint8(x), B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

const receiptText = "DEPOSITO SILVA\nCimento CP-II 50kg\n20/02/2026\nTOTAL R$ 35,90\n"

func TestAddImage_Photo(t *testing.T) {
	ctx := context.Background()
	svc, hist := newTestService(t, openAssets(t))

	a, err := svc.AddImage(ctx, ImageInput{Type: asset.TypePhoto, Room: "bath", Caption: "before"}, bytes.NewReader(pngImage(t, 64, 32, 10)))
	require.NoError(t, err)
	assert.Equal(t, asset.TypePhoto, a.Type)
	assert.Equal(t, "before", a.Caption)
	mediaType, _, err := imagecodec.DecodeDataURI(a.EncodedImage)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediaType)
	assert.Equal(t, change{"create", "images", a.ID, "photo"}, hist.changes[len(hist.changes)-1])

	photos, err := svc.Images(ctx, asset.Filter{Type: asset.TypePhoto, Room: "bath"})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, a.ID, photos[0].ID)
}

func TestAddImage_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, openAssets(t))

	_, err := svc.AddImage(ctx, ImageInput{Type: "video"}, bytes.NewReader(pngImage(t, 8, 8, 0)))
	assert.Error(t, err)

	_, err = svc.AddImage(ctx, ImageInput{Type: asset.TypePhoto, Room: "garage"}, bytes.NewReader(pngImage(t, 8, 8, 0)))
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.AddImage(ctx, ImageInput{Type: asset.TypePhoto}, bytes.NewReader([]byte("not an image")))
	assert.Error(t, err)
}

func TestAddImage_PlanReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, openAssets(t))

	_, err := svc.AddImage(ctx, ImageInput{Type: asset.TypePlan, Room: "bath"}, bytes.NewReader(pngImage(t, 16, 16, 1)))
	require.NoError(t, err)
	second, err := svc.AddImage(ctx, ImageInput{Type: asset.TypePlan, Room: "bath"}, bytes.NewReader(pngImage(t, 16, 16, 200)))
	require.NoError(t, err)
	_, err = svc.AddImage(ctx, ImageInput{Type: asset.TypePlan, Room: "bedroom"}, bytes.NewReader(pngImage(t, 16, 16, 1)))
	require.NoError(t, err)

	plans, err := svc.Images(ctx, asset.Filter{Type: asset.TypePlan, Room: "bath"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, second.ID, plans[0].ID)
}

func TestRemoveImage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, openAssets(t))

	a, err := svc.AddImage(ctx, ImageInput{Type: asset.TypePhoto}, bytes.NewReader(pngImage(t, 8, 8, 3)))
	require.NoError(t, err)
	require.NoError(t, svc.RemoveImage(ctx, a.ID))
	require.NoError(t, svc.RemoveImage(ctx, a.ID))

	_, ok, err := svc.Image(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScanAndLinkReceipt(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, openAssets(t))
	photo := pngImage(t, 40, 60, 90)

	scan, err := svc.ScanReceipt(ctx, bytes.NewReader(photo), receiptText)
	require.NoError(t, err)
	assert.Empty(t, scan.Duplicates)
	r := scan.Receipt
	assert.Equal(t, asset.TypeReceipt, r.Type)
	assert.Equal(t, "DEPOSITO SILVA", r.ExtractedDescription)
	assert.Equal(t, "2026-02-20", r.ExtractedDate)
	require.NotNil(t, r.ExtractedAmount)
	assert.InDelta(t, 35.90, *r.ExtractedAmount, 1e-9)
	assert.False(t, r.Linked)

	// Same photo again is stored but flagged.
	again, err := svc.ScanReceipt(ctx, bytes.NewReader(photo), receiptText)
	require.NoError(t, err)
	require.Len(t, again.Duplicates, 1)
	assert.Equal(t, r.ID, again.Duplicates[0].ID)

	e, err := svc.LinkReceipt(ctx, r.ID, LinkOverrides{Room: "bath"})
	require.NoError(t, err)
	assert.Equal(t, "DEPOSITO SILVA", e.Description)
	assert.Equal(t, "2026-02-20", e.Date)
	assert.True(t, e.Amount.Equal(dec("35.9")), e.Amount.String())
	assert.Equal(t, "bath", e.Room)
	assert.Equal(t, model.CategoryMaterial, e.Category)
	assert.Equal(t, r.ID, e.ReceiptID)

	linked, ok, err := svc.Image(ctx, r.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, linked.Linked)
	assert.Equal(t, e.ID, linked.LinkedExpenseID)

	_, err = svc.LinkReceipt(ctx, r.ID, LinkOverrides{})
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	assert.Len(t, svc.Records().ListAll(record.Expenses), 1)
}

func TestLinkReceipt_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, openAssets(t))

	_, err := svc.LinkReceipt(ctx, "missing", LinkOverrides{})
	assert.ErrorIs(t, err, ErrNotFound)

	photo, err := svc.AddImage(ctx, ImageInput{Type: asset.TypePhoto}, bytes.NewReader(pngImage(t, 8, 8, 5)))
	require.NoError(t, err)
	_, err = svc.LinkReceipt(ctx, photo.ID, LinkOverrides{})
	assert.ErrorIs(t, err, ErrNotReceipt)

	blank, err := svc.ScanReceipt(ctx, bytes.NewReader(pngImage(t, 8, 8, 6)), "obrigado pela preferencia")
	require.NoError(t, err)
	_, err = svc.LinkReceipt(ctx, blank.Receipt.ID, LinkOverrides{})
	assert.ErrorIs(t, err, ErrNoAmount)

	amount := dec("12.50")
	e, err := svc.LinkReceipt(ctx, blank.Receipt.ID, LinkOverrides{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", e.Date)
	assert.True(t, e.Amount.Equal(amount))
}
