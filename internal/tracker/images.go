package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/reforma-dev/reforma/internal/asset"
	"github.com/reforma-dev/reforma/internal/catalog"
	"github.com/reforma-dev/reforma/internal/history"
	"github.com/reforma-dev/reforma/internal/imagecodec"
	"github.com/reforma-dev/reforma/internal/model"
	"github.com/reforma-dev/reforma/internal/receipt"
	"github.com/reforma-dev/reforma/internal/record"
)

const entityImages record.Collection = "images"

// Receipt errors.
var (
	ErrNotReceipt    = errors.New("image is not a receipt")
	ErrAlreadyLinked = errors.New("receipt already linked to an expense")
	ErrNoAmount      = errors.New("receipt has no amount")
)

// ImageInput describes an image to store.
type ImageInput struct {
	Type      asset.Type
	Room      string
	RelatedID string
	Caption   string
}

// AddImage compresses and stores an image. A plan replaces the room's
// previous plan.
func (s *Service) AddImage(ctx context.Context, in ImageInput, r io.Reader) (asset.Asset, error) {
	store, err := s.imageStore()
	if err != nil {
		return asset.Asset{}, err
	}
	if _, err := asset.ParseType(string(in.Type)); err != nil {
		return asset.Asset{}, err
	}
	if in.Room != "" {
		if err := s.checkRoom("image", in.Room); err != nil {
			return asset.Asset{}, err
		}
	}
	encoded, err := imagecodec.Compress(r, s.presets[in.Type])
	if err != nil {
		return asset.Asset{}, err
	}

	var a asset.Asset
	if in.Type == asset.TypePlan {
		a, err = store.SetPlan(ctx, in.Room, encoded)
	} else {
		a, err = store.Add(ctx, asset.Asset{
			Type:         in.Type,
			Room:         in.Room,
			RelatedID:    in.RelatedID,
			Caption:      in.Caption,
			EncodedImage: encoded,
		})
	}
	if err != nil {
		return asset.Asset{}, err
	}
	s.logChange(history.ActionCreate, entityImages, a.ID, string(a.Type))
	return a, nil
}

// Images lists images matching f, newest first.
func (s *Service) Images(ctx context.Context, f asset.Filter) ([]asset.Asset, error) {
	store, err := s.imageStore()
	if err != nil {
		return nil, err
	}
	out, err := store.GetAll(ctx, f)
	if err != nil {
		return nil, err
	}
	asset.SortNewestFirst(out)
	return out, nil
}

// Image returns one image.
func (s *Service) Image(ctx context.Context, imageID string) (asset.Asset, bool, error) {
	store, err := s.imageStore()
	if err != nil {
		return asset.Asset{}, false, err
	}
	return store.GetByID(ctx, imageID)
}

// RemoveImage deletes an image. Missing ids are ignored.
func (s *Service) RemoveImage(ctx context.Context, imageID string) error {
	store, err := s.imageStore()
	if err != nil {
		return err
	}
	if err := store.Remove(ctx, imageID); err != nil {
		return err
	}
	s.logChange(history.ActionDelete, entityImages, imageID, "")
	return nil
}

// ScanResult is a stored receipt and any earlier receipts with the same
// image content.
type ScanResult struct {
	Receipt    asset.Asset
	Duplicates []asset.Asset
}

// ScanReceipt stores a receipt photo with the fields read from its OCR
// text. A receipt whose compressed image matches an earlier one is still
// stored; the earlier ones are reported.
func (s *Service) ScanReceipt(ctx context.Context, image io.Reader, ocrText string) (ScanResult, error) {
	store, err := s.imageStore()
	if err != nil {
		return ScanResult{}, err
	}
	encoded, err := imagecodec.Compress(image, s.presets[asset.TypeReceipt])
	if err != nil {
		return ScanResult{}, err
	}

	dups, err := store.FindByHash(ctx, asset.Hash(encoded))
	if err != nil {
		return ScanResult{}, err
	}
	if len(dups) > 0 {
		s.log.WithField("matches", len(dups)).Warn("receipt looks like one already scanned")
	}

	ex := receipt.Extract(ocrText)
	a := asset.Asset{
		Type:                 asset.TypeReceipt,
		EncodedImage:         encoded,
		ExtractedText:        ocrText,
		ExtractedDescription: ex.Description,
		ExtractedDate:        ex.Date,
	}
	if ex.Amount != nil {
		v := ex.Amount.InexactFloat64()
		a.ExtractedAmount = &v
	}
	a, err = store.Add(ctx, a)
	if err != nil {
		return ScanResult{}, err
	}
	s.logChange(history.ActionCreate, entityImages, a.ID, "receipt "+ex.Description)
	return ScanResult{Receipt: a, Duplicates: dups}, nil
}

// LinkOverrides replace fields extracted from a receipt. Zero values keep
// the extracted or default value.
type LinkOverrides struct {
	Description   string
	Amount        *decimal.Decimal
	Date          string
	Category      string
	Room          string
	PaymentMethod string
}

// LinkReceipt creates an expense from a receipt and marks the receipt linked.
func (s *Service) LinkReceipt(ctx context.Context, receiptID string, o LinkOverrides) (model.Expense, error) {
	store, err := s.imageStore()
	if err != nil {
		return model.Expense{}, err
	}
	a, ok, err := store.GetByID(ctx, receiptID)
	if err != nil {
		return model.Expense{}, err
	}
	if !ok {
		return model.Expense{}, fmt.Errorf("image %s: %w", receiptID, ErrNotFound)
	}
	if a.Type != asset.TypeReceipt {
		return model.Expense{}, fmt.Errorf("image %s: %w", receiptID, ErrNotReceipt)
	}
	if a.Linked {
		return model.Expense{}, fmt.Errorf("image %s: %w", receiptID, ErrAlreadyLinked)
	}

	e := model.Expense{
		Description:   first(o.Description, a.ExtractedDescription, "Receipt"),
		Date:          first(o.Date, a.ExtractedDate, s.Today()),
		PaymentMethod: o.PaymentMethod,
		ReceiptID:     a.ID,
	}
	switch {
	case o.Amount != nil:
		e.Amount = *o.Amount
	case a.ExtractedAmount != nil:
		e.Amount = decimal.NewFromFloat(*a.ExtractedAmount)
	default:
		return model.Expense{}, fmt.Errorf("image %s: %w", receiptID, ErrNoAmount)
	}
	e.Category = first(o.Category, catalog.DetectCategory(e.Description))
	e.Room = first(o.Room, catalog.DetectRoom(e.Description))

	added, err := s.AddExpense(e)
	if err != nil {
		return model.Expense{}, err
	}
	if _, err := store.MarkLinked(ctx, a.ID, added.ID); err != nil {
		return added, fmt.Errorf("marking receipt linked: %w", err)
	}
	s.logChange(history.ActionLink, entityImages, a.ID, "expense "+added.ID)
	return added, nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
