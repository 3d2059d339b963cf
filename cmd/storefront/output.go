package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fjod/go_cart/storefront/internal/app"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

func printResult(w io.Writer, res app.Result) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Notice != "" {
		fmt.Fprintln(w, res.Notice)
	}
	if res.Receipt != nil {
		fmt.Fprintf(w, "Order %s: %s\n", res.Receipt.OrderRef, domain.FormatMoney(res.Receipt.Totals.Total))
	}
	return printState(w, res.State)
}

func printState(w io.Writer, st app.State) error {
	who := "not logged in"
	if st.User != nil {
		who = fmt.Sprintf("%s (%s)", st.User.DisplayName(), st.Auth)
	}
	fmt.Fprintf(w, "[%s] %s, cart: %d item(s)\n", st.Page, who, st.ItemCount)

	switch st.Page {
	case domain.PageCart:
		return printCart(w, st)
	case domain.PageHome, domain.PageProducts, domain.PageAdmin:
		return printProducts(w, st.Products)
	}
	return nil
}

func printProducts(w io.Writer, products []domain.Product) error {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products available.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, domain.FormatMoney(p.Price), p.Stock)
	}
	return tw.Flush()
}

func printCart(w io.Writer, st app.State) error {
	if len(st.Cart) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tTOTAL")
	for _, l := range st.Cart {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", l.ProductID, l.Name, domain.FormatMoney(l.Price), l.Quantity, domain.FormatMoney(l.LineTotal()))
	}
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\n", domain.FormatMoney(st.Totals.Subtotal))
	fmt.Fprintf(tw, "\t\t\tTax (10%%)\t%s\n", domain.FormatMoney(st.Totals.Tax))
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\n", domain.FormatMoney(st.Totals.Total))
	return tw.Flush()
}
