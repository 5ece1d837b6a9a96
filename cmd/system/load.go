package system

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Alijeyrad/myvoice_backend/config"
	"github.com/Alijeyrad/myvoice_backend/internal/repo"
	"github.com/Alijeyrad/myvoice_backend/pkg/database"
)

// referenceData is the layout of a reference data file:
//
//	regions:
//	  - name: Wamba
//	    type: lga
//	    external_id: 593
//	clinics:
//	  - name: Arum Chug
//	    code: 1
//	    lga: Wamba
//	services:
//	  - name: Antenatal
//	    code: 5
type referenceData struct {
	Regions  []regionEntry  `mapstructure:"regions"`
	Clinics  []clinicEntry  `mapstructure:"clinics"`
	Services []serviceEntry `mapstructure:"services"`
}

type regionEntry struct {
	Name          string `mapstructure:"name"`
	AlternateName string `mapstructure:"alternate_name"`
	Type          string `mapstructure:"type"`
	ExternalID    int    `mapstructure:"external_id"`
}

type clinicEntry struct {
	Name       string `mapstructure:"name"`
	Slug       string `mapstructure:"slug"`
	Code       int    `mapstructure:"code"`
	Town       string `mapstructure:"town"`
	Ward       string `mapstructure:"ward"`
	LGA        string `mapstructure:"lga"`
	Category   string `mapstructure:"category"`
	YearOpened string `mapstructure:"year_opened"`
}

type serviceEntry struct {
	Name string `mapstructure:"name"`
	Slug string `mapstructure:"slug"`
	Code int    `mapstructure:"code"`
}

type loadCounts struct {
	regions, clinics, services int
}

func readReferenceData(path string) (*referenceData, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var data referenceData
	if err := v.Unmarshal(&data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *referenceData) validate() error {
	seen := map[int]string{}
	for _, c := range d.Clinics {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("clinic with code %d has no name", c.Code)
		}
		if c.Code <= 0 {
			return fmt.Errorf("clinic %q: code must be positive", c.Name)
		}
		if prev, ok := seen[c.Code]; ok {
			return fmt.Errorf("clinics %q and %q share code %d", prev, c.Name, c.Code)
		}
		seen[c.Code] = c.Name
	}
	seen = map[int]string{}
	for _, s := range d.Services {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("service with code %d has no name", s.Code)
		}
		if prev, ok := seen[s.Code]; ok {
			return fmt.Errorf("services %q and %q share code %d", prev, s.Name, s.Code)
		}
		seen[s.Code] = s.Name
	}
	return nil
}

func slugOf(slug, name string) string {
	if slug != "" {
		return slug
	}
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// load inserts the entries that are not stored yet. Regions match by name,
// clinics and services by code.
func (d *referenceData) load(ctx context.Context, tx *repo.Client) (loadCounts, error) {
	var n loadCounts
	for _, e := range d.Regions {
		_, err := tx.Region.ByName(ctx, e.Name)
		if err == nil {
			continue
		}
		if !repo.IsNotFound(err) {
			return n, fmt.Errorf("region %q: %w", e.Name, err)
		}
		r := &repo.Region{Name: e.Name, AlternateName: e.AlternateName, Type: repo.RegionType(e.Type), ExternalID: e.ExternalID}
		if _, err := tx.Region.Create(ctx, r); err != nil {
			return n, fmt.Errorf("region %q: %w", e.Name, err)
		}
		n.regions++
	}
	for _, e := range d.Clinics {
		_, err := tx.Clinic.ByCode(ctx, e.Code)
		if err == nil {
			continue
		}
		if !repo.IsNotFound(err) {
			return n, fmt.Errorf("clinic %q: %w", e.Name, err)
		}
		c := &repo.Clinic{
			Name:       e.Name,
			Slug:       slugOf(e.Slug, e.Name),
			Code:       e.Code,
			Town:       e.Town,
			Ward:       e.Ward,
			LGA:        e.LGA,
			Category:   e.Category,
			YearOpened: e.YearOpened,
		}
		if _, err := tx.Clinic.Create(ctx, c); err != nil {
			return n, fmt.Errorf("clinic %q: %w", e.Name, err)
		}
		n.clinics++
	}
	for _, e := range d.Services {
		_, err := tx.Service.ByCode(ctx, e.Code)
		if err == nil {
			continue
		}
		if !repo.IsNotFound(err) {
			return n, fmt.Errorf("service %q: %w", e.Name, err)
		}
		s := &repo.Service{Name: e.Name, Slug: slugOf(e.Slug, e.Name), Code: e.Code}
		if _, err := tx.Service.Create(ctx, s); err != nil {
			return n, fmt.Errorf("service %q: %w", e.Name, err)
		}
		n.services++
	}
	return n, nil
}

func NewLoadCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load regions, clinics and services from a YAML file",
		Long: `Load the reference data SMS registration resolves against. Entries
already present (same region name, clinic code or service code) are skipped,
so the command can be re-run after editing the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readReferenceData(file)
			if err != nil {
				return err
			}

			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			client, err := database.NewEntClient(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create ent client: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
			defer cancel()

			var n loadCounts
			err = client.WithTx(ctx, func(tx *repo.Client) error {
				n, err = data.load(ctx, tx)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to load reference data: %w", err)
			}

			fmt.Printf("Loaded %d regions, %d clinics, %d services.\n", n.regions, n.clinics, n.services)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "reference data file (yaml)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
