package main

import (
	"context"
	"encoding/json"

	"storefront-crm/internal/app"
	"storefront-crm/internal/domain/tenant"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	merchantEmail     string
	merchantName      string
	merchantPhone     string
	merchantStore     string
	merchantSubdomain string
)

// merchantCmd groups merchant administration
var merchantCmd = &cobra.Command{
	Use:   "merchant",
	Short: "Manage merchant accounts",
}

var merchantCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a merchant with a trial subscription",
	Long: `Provision a merchant account and its trial subscription.

When --store and --subdomain are given the merchant's first store is created
too, with the merchant as owner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withServices(ctx, func(svc *app.Services) error {
			out, err := createMerchant(ctx, svc, &tenant.CreateMerchantRequest{
				Email: merchantEmail,
				Name:  merchantName,
				Phone: merchantPhone,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		})
	},
}

type merchantCreated struct {
	*tenant.ProvisionResult
	Store *tenant.Store `json:"store,omitempty"`
}

func createMerchant(ctx context.Context, svc *app.Services, req *tenant.CreateMerchantRequest) (*merchantCreated, error) {
	res, err := svc.Tenant.ProvisionMerchant(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Info("merchant provisioned",
		zap.String("merchant_id", res.Merchant.ID),
		zap.String("plan", string(res.Subscription.Plan)),
	)

	out := &merchantCreated{ProvisionResult: res}
	if merchantStore == "" {
		return out, nil
	}
	out.Store, err = svc.Tenant.CreateStore(ctx, res.Merchant.ID, &tenant.CreateStoreRequest{
		Name:      merchantStore,
		Subdomain: merchantSubdomain,
	})
	if err != nil {
		return nil, err
	}
	log.Info("store created", zap.String("store_id", out.Store.ID))
	return out, nil
}

func init() {
	f := merchantCreateCmd.Flags()
	f.StringVar(&merchantEmail, "email", "", "Merchant login email")
	f.StringVar(&merchantName, "name", "", "Merchant display name")
	f.StringVar(&merchantPhone, "phone", "", "Contact phone")
	f.StringVar(&merchantStore, "store", "", "Name of a first store to create")
	f.StringVar(&merchantSubdomain, "subdomain", "", "Subdomain for the first store")
	_ = merchantCreateCmd.MarkFlagRequired("email")
	_ = merchantCreateCmd.MarkFlagRequired("name")
	merchantCreateCmd.MarkFlagsRequiredTogether("store", "subdomain")

	merchantCmd.AddCommand(merchantCreateCmd)
}
