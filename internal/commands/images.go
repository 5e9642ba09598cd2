package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reforma-dev/reforma/internal/asset"
	"github.com/reforma-dev/reforma/internal/imagecodec"
	"github.com/reforma-dev/reforma/internal/tracker"
)

func newImageCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Store floor plans, progress photos and receipts",
	}
	cmd.AddCommand(
		newImageAddCommand(dir),
		newImageListCommand(dir),
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete an image",
			Args:  cobra.ExactArgs(1),
			RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
				if err := s.svc.RemoveImage(cmd.Context(), args[0]); err != nil {
					return err
				}
				printf(cmd, "Removed image %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "export <id> <file>",
			Short: "Write an image's content to a file",
			Args:  cobra.ExactArgs(2),
			RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
				a, ok, err := s.svc.Image(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("image %s: %w", args[0], tracker.ErrNotFound)
				}
				_, data, err := imagecodec.DecodeDataURI(a.EncodedImage)
				if err != nil {
					return fmt.Errorf("image %s: %w", a.ID, err)
				}
				return writeFile(args[1], func(w io.Writer) error {
					_, err := w.Write(data)
					return err
				})
			}),
		},
	)
	return cmd
}

func newImageAddCommand(dir func() string) *cobra.Command {
	var in tracker.ImageInput
	var kind string

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Compress and store an image",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			t, err := asset.ParseType(kind)
			if err != nil {
				return err
			}
			in.Type = t
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening image: %w", err)
			}
			defer f.Close()

			a, err := s.svc.AddImage(cmd.Context(), in, f)
			if err != nil {
				return err
			}
			printf(cmd, "Stored %s %s (%d KB)\n", a.Type, a.ID, len(a.EncodedImage)/1024)
			return nil
		}),
	}
	cmd.Flags().StringVar(&kind, "type", string(asset.TypePhoto), "plan, photo or receipt")
	cmd.Flags().StringVar(&in.Room, "room", "", "room the image shows")
	cmd.Flags().StringVar(&in.RelatedID, "related", "", "id of a related record")
	cmd.Flags().StringVar(&in.Caption, "caption", "", "caption")
	return cmd
}

func newImageListCommand(dir func() string) *cobra.Command {
	var f asset.Filter
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List images, newest first",
		Args:  cobra.NoArgs,
		RunE: withSession(dir, func(cmd *cobra.Command, args []string, s *session) error {
			f.Type = asset.Type(kind)
			images, err := s.svc.Images(cmd.Context(), f)
			if err != nil {
				return err
			}
			if len(images) == 0 {
				printf(cmd, "No images.\n")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tROOM\tCREATED\tDETAILS")
			for _, a := range images {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Type, a.Room, a.CreatedAt, imageDetails(a))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&kind, "type", "", "only plan, photo or receipt")
	cmd.Flags().StringVar(&f.Room, "room", "", "only this room")
	cmd.Flags().StringVar(&f.RelatedID, "related", "", "only images of this record")
	return cmd
}

func imageDetails(a asset.Asset) string {
	if a.Type != asset.TypeReceipt {
		return a.Caption
	}
	parts := []string{a.ExtractedDescription}
	if a.ExtractedAmount != nil {
		parts = append(parts, fmt.Sprintf("%.2f", *a.ExtractedAmount))
	}
	if a.Linked {
		parts = append(parts, "linked to "+a.LinkedExpenseID)
	}
	return strings.Join(parts, " ")
}

func newReceiptCommand(dir func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Store receipts and turn them into expenses",
	}
	cmd.AddCommand(newReceiptScanCommand(dir), newReceiptLinkCommand(dir))
	return cmd
}

func newReceiptScanCommand(dir func() string) *cobra.Command {
	var textFile string

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Store a receipt photo with the fields read from its OCR text",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			var text []byte
			var err error
			switch textFile {
			case "":
			case "-":
				text, err = io.ReadAll(cmd.InOrStdin())
			default:
				text, err = os.ReadFile(textFile)
			}
			if err != nil {
				return fmt.Errorf("reading OCR text: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening receipt: %w", err)
			}
			defer f.Close()

			res, err := s.svc.ScanReceipt(cmd.Context(), f, string(text))
			if err != nil {
				return err
			}
			printf(cmd, "Stored receipt %s: %s\n", res.Receipt.ID, imageDetails(res.Receipt))
			for _, d := range res.Duplicates {
				printf(cmd, "  same image as receipt %s from %s\n", d.ID, d.CreatedAt)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&textFile, "text", "", "file with the OCR text (- for stdin)")
	return cmd
}

func newReceiptLinkCommand(dir func() string) *cobra.Command {
	var o tracker.LinkOverrides
	var amount string

	cmd := &cobra.Command{
		Use:   "link <receipt-id>",
		Short: "Create an expense from a receipt",
		Args:  cobra.ExactArgs(1),
		RunE: mutating(dir, func(cmd *cobra.Command, args []string, s *session) error {
			if amount != "" {
				d, err := parseMoney("amount", amount)
				if err != nil {
					return err
				}
				o.Amount = &d
			}
			e, err := s.svc.LinkReceipt(cmd.Context(), args[0], o)
			if err != nil {
				return err
			}
			printf(cmd, "Added expense %s: %s %s on %s\n", e.ID, e.Description, e.Amount.StringFixed(2), e.Date)
			return nil
		}),
	}
	cmd.Flags().StringVar(&o.Description, "description", "", "override the description read from the receipt")
	cmd.Flags().StringVar(&amount, "amount", "", "override the amount read from the receipt")
	cmd.Flags().StringVar(&o.Date, "date", "", "override the date read from the receipt")
	cmd.Flags().StringVar(&o.Category, "category", "", "category")
	cmd.Flags().StringVar(&o.Room, "room", "", "room")
	cmd.Flags().StringVar(&o.PaymentMethod, "payment", "", "payment method")
	return cmd
}
