package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/address"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-checkout/internal/checkout-gateway/infra/adapters/service"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/config"
)

func lookupCommand() *cli.Command {
	return &cli.Command{
		Name:   "lookup",
		Usage:  "type address queries and pick a suggestion with ':select <id>'",
		Action: lookup,
	}
}

func lookup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := c.App.Writer
	client := service.NewAddressClient(cfg.StorefrontAPIURL, cfg.AddressCountry, service.NewHTTPClient(cfg.RequestTimeout))

	ac := address.NewAutocomplete(client,
		address.WithDelay(cfg.AddressDebounce),
		address.WithOnUpdate(func(query string, suggestions []entity.AddressSuggestion) {
			if query == "" {
				return
			}
			fmt.Fprintf(out, "%q: %d suggestion(s)\n", query, len(suggestions))
			for _, s := range suggestions {
				fmt.Fprintf(out, "  %s  %s\n", s.ID, s.Text)
			}
		}),
	)
	defer ac.Close()

	form := entity.CheckoutForm{ShippingSameAsBilling: true}
	in := bufio.NewScanner(c.App.Reader)
	for in.Scan() {
		line := in.Text()
		id, ok := strings.CutPrefix(line, ":select ")
		if !ok {
			ac.OnQueryChange(line)
			continue
		}
		if err := ac.Select(c.Context, strings.TrimSpace(id), &form); err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		b := form.Billing
		fmt.Fprintf(out, "selected: %s, %s, %s %s\n", b.Line1, b.City, b.PostalCode, b.Country)
	}
	return in.Err()
}
