package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"storefront-crm/internal/app"
	"storefront-crm/internal/domain/catalog"
	"storefront-crm/internal/domain/crm"
	"storefront-crm/internal/domain/tenant"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	seedFile  string
	seedStore string
)

// seedCmd loads a YAML fixture into one store
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data from a YAML fixture into a store",
	Long: `Load customers, catalog and CRM records from a YAML fixture.

Leads and deals are nested under the contact they belong to; their contact_id
is filled in from the contact created for that entry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("failed to open fixture: %w", err)
		}
		defer f.Close()

		fx, err := parseFixture(f)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		return withServices(ctx, func(svc *app.Services) error {
			s := &seeder{customers: svc.Tenant, catalog: svc.Catalog, crm: svc.CRM, logger: log}
			sum, err := s.Apply(ctx, seedStore, fx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sum)
			return nil
		})
	},
}

type fixture struct {
	Customers  []tenant.CreateUserRequest      `yaml:"customers"`
	Categories []catalog.CreateCategoryRequest `yaml:"categories"`
	Products   []fixtureProduct                `yaml:"products"`
	Contacts   []fixtureContact                `yaml:"contacts"`
}

type fixtureProduct struct {
	catalog.CreateProductRequest `yaml:",inline"`
	Categories                   []string `yaml:"categories"`
}

type fixtureContact struct {
	crm.CreateContactRequest `yaml:",inline"`
	Leads                    []crm.CreateLeadRequest `yaml:"leads"`
	Deals                    []crm.CreateDealRequest `yaml:"deals"`
}

func parseFixture(r io.Reader) (*fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx fixture
	if err := dec.Decode(&fx); err != nil {
		if errors.Is(err, io.EOF) {
			return &fx, nil
		}
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &fx, nil
}

type customerCreator interface {
	CreateCustomer(ctx context.Context, storeID string, req *tenant.CreateUserRequest) (*tenant.User, error)
}

type catalogCreator interface {
	CreateCategory(ctx context.Context, storeID string, req *catalog.CreateCategoryRequest) (*catalog.Category, error)
	CreateProduct(ctx context.Context, storeID string, req *catalog.CreateProductRequest) (*catalog.Product, error)
	AssignCategory(ctx context.Context, storeID, productID, categoryID string) (*catalog.Product, error)
}

type crmCreator interface {
	CreateContact(ctx context.Context, storeID string, req *crm.CreateContactRequest) (*crm.Contact, error)
	CreateLead(ctx context.Context, storeID string, req *crm.CreateLeadRequest) (*crm.Lead, error)
	CreateDeal(ctx context.Context, storeID string, req *crm.CreateDealRequest) (*crm.Deal, error)
}

type seeder struct {
	customers customerCreator
	catalog   catalogCreator
	crm       crmCreator
	logger    *zap.Logger
}

type seedSummary struct {
	Customers, Categories, Products, Contacts, Leads, Deals int
}

func (s seedSummary) String() string {
	return fmt.Sprintf("seeded %d customers, %d categories, %d products, %d contacts, %d leads, %d deals",
		s.Customers, s.Categories, s.Products, s.Contacts, s.Leads, s.Deals)
}

// Apply creates every fixture record in order and stops at the first failure.
// Records created before the failure are kept.
func (s *seeder) Apply(ctx context.Context, storeID string, fx *fixture) (seedSummary, error) {
	var sum seedSummary

	for i := range fx.Customers {
		if _, err := s.customers.CreateCustomer(ctx, storeID, &fx.Customers[i]); err != nil {
			return sum, fmt.Errorf("customer %q: %w", fx.Customers[i].Email, err)
		}
		sum.Customers++
	}

	categoryIDs := make(map[string]string, len(fx.Categories))
	for i := range fx.Categories {
		cat, err := s.catalog.CreateCategory(ctx, storeID, &fx.Categories[i])
		if err != nil {
			return sum, fmt.Errorf("category %q: %w", fx.Categories[i].Name, err)
		}
		categoryIDs[strings.ToLower(cat.Name)] = cat.ID
		sum.Categories++
	}

	for i := range fx.Products {
		fp := &fx.Products[i]
		p, err := s.catalog.CreateProduct(ctx, storeID, &fp.CreateProductRequest)
		if err != nil {
			return sum, fmt.Errorf("product %q: %w", fp.SKU, err)
		}
		for _, name := range fp.Categories {
			catID, ok := categoryIDs[strings.ToLower(name)]
			if !ok {
				return sum, fmt.Errorf("product %q: unknown category %q", fp.SKU, name)
			}
			if _, err := s.catalog.AssignCategory(ctx, storeID, p.ID, catID); err != nil {
				return sum, fmt.Errorf("product %q: %w", fp.SKU, err)
			}
		}
		sum.Products++
	}

	for i := range fx.Contacts {
		fc := &fx.Contacts[i]
		contact, err := s.crm.CreateContact(ctx, storeID, &fc.CreateContactRequest)
		if err != nil {
			return sum, fmt.Errorf("contact %q: %w", fc.Email, err)
		}
		sum.Contacts++

		for j := range fc.Leads {
			fc.Leads[j].ContactID = contact.ID
			if _, err := s.crm.CreateLead(ctx, storeID, &fc.Leads[j]); err != nil {
				return sum, fmt.Errorf("lead for %q: %w", fc.Email, err)
			}
			sum.Leads++
		}
		for j := range fc.Deals {
			fc.Deals[j].ContactID = contact.ID
			if _, err := s.crm.CreateDeal(ctx, storeID, &fc.Deals[j]); err != nil {
				return sum, fmt.Errorf("deal %q: %w", fc.Deals[j].Name, err)
			}
			sum.Deals++
		}
	}

	s.logger.Info("fixture applied",
		zap.String("store_id", storeID),
		zap.Int("contacts", sum.Contacts),
		zap.Int("leads", sum.Leads),
		zap.Int("deals", sum.Deals),
	)
	return sum, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "Path to the YAML fixture")
	seedCmd.Flags().StringVar(&seedStore, "store", "", "Store ID to seed")
	_ = seedCmd.MarkFlagRequired("file")
	_ = seedCmd.MarkFlagRequired("store")
}
