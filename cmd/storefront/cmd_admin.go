package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/spf13/cobra"
)

var (
	productName        string
	productPrice       float64
	productDescription string
	productCategory    string
	productStock       int
	productImageURL    string
	productImageFile   string

	exportOutput string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the product catalog (admin accounts only)",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, err := productInput(cmd)
		if err != nil {
			return err
		}
		return dispatch(cmd, app.SaveProduct{Input: in})
	},
}

var adminUpdateCmd = &cobra.Command{
	Use:   "update <product-id>",
	Short: "Replace a product's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := productInput(cmd)
		if err != nil {
			return err
		}
		return dispatch(cmd, app.SaveProduct{ID: args[0], Input: in})
	},
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd, app.DeleteProduct{ID: args[0]})
	},
}

var adminExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as an xlsx workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withController(cmd.Context(), func(ctx context.Context, ctrl *app.Controller) error {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOutput, err)
			}
			if err := ctrl.ExportCatalog(ctx, f); err != nil {
				f.Close()
				_ = os.Remove(exportOutput)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", exportOutput, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog written to %s\n", exportOutput)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{adminCreateCmd, adminUpdateCmd} {
		c.Flags().StringVar(&productName, "name", "", "Product name (required)")
		c.Flags().Float64Var(&productPrice, "price", 0, "Price")
		c.Flags().StringVar(&productDescription, "description", "", "Description")
		c.Flags().StringVar(&productCategory, "category", "", "Category")
		c.Flags().IntVar(&productStock, "stock", 0, "Units in stock (sent only when set)")
		c.Flags().StringVar(&productImageURL, "image-url", "", "Image URL")
		c.Flags().StringVar(&productImageFile, "image-file", "", "Image file to upload; takes precedence over --image-url")
	}
	adminExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "products.xlsx", "Output file")

	adminCmd.AddCommand(adminCreateCmd, adminUpdateCmd, adminDeleteCmd, adminExportCmd)
	rootCmd.AddCommand(adminCmd)
}

func productInput(cmd *cobra.Command) (domain.ProductInput, error) {
	in := domain.ProductInput{
		Name:        productName,
		Price:       productPrice,
		Description: productDescription,
		Category:    productCategory,
	}
	if cmd.Flags().Changed("stock") {
		stock := productStock
		in.Stock = &stock
	}

	var (
		fileName string
		data     []byte
	)
	if productImageFile != "" {
		var err error
		data, err = os.ReadFile(productImageFile)
		if err != nil {
			return domain.ProductInput{}, fmt.Errorf("failed to read image: %w", err)
		}
		fileName = filepath.Base(productImageFile)
	}

	image, err := app.ImageFromForm(cfg.Media, productImageURL, fileName, data)
	if err != nil {
		return domain.ProductInput{}, err
	}
	in.Image = image
	return in, nil
}
