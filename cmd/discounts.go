package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/pricelist-cli/internal/model"
)

func addDiscountFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("tax", 0, "tax percent (default from config)")
	cmd.Flags().Float64("d1", 0, "net cost discount percent (default from config)")
	cmd.Flags().Float64("d2", 0, "reseller catalog markup percent (default from config)")
	cmd.Flags().Float64("d3", 0, "wholesale markup percent (default from config)")
}

// discountsFromFlags overlays the flags the user set on base. Non-finite
// percentages are rejected whether they come from a flag or from base.
func discountsFromFlags(cmd *cobra.Command, base model.DiscountConfig) (model.DiscountConfig, error) {
	out := base
	for name, dst := range map[string]*float64{
		"tax": &out.TaxPercent,
		"d1":  &out.WholesaleDiscount1Percent,
		"d2":  &out.WholesaleDiscount2Percent,
		"d3":  &out.WholesaleDiscount3Percent,
	} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return base, eris.Wrapf(err, "read --%s", name)
		}
		if !model.IsFinite(v) {
			return base, eris.Errorf("--%s must be a finite number, got %v", name, v)
		}
		*dst = v
	}
	if err := out.Validate(); err != nil {
		return base, eris.Wrap(err, "configured discounts")
	}
	return out, nil
}
