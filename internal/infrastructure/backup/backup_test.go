package backup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"birrificio/internal/core/apperror"
	"birrificio/internal/core/types"
	"birrificio/internal/domain"
	"birrificio/internal/domain/domaintest"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/warehouse"
	"birrificio/internal/infrastructure/backup"
)

func sampleDataset(product string, qty float64) *domain.Dataset {
	d := domain.NewDataset()
	d.Movements = append(d.Movements, movement.Movement{
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local),
		Category:    movement.CategoryMalti,
		Product:     product,
		Brand:       "B",
		Supplier:    "S",
		Quantity:    types.NewQuantityFromFloat64(qty),
		SupplierLot: "L1",
	})
	return d
}

func TestBackupRoundTrip(t *testing.T) {
	source := domaintest.NewMemStore()
	source.Seed("2023", sampleDataset("VIENNA", 40))
	source.Seed("2024", sampleDataset("MALTO PILS", 12.5))
	ctx := context.Background()

	payload, err := backup.NewService(source).Export(ctx)
	require.NoError(t, err)

	target := domaintest.NewMemStore()
	require.NoError(t, backup.NewService(target).Import(ctx, payload))

	years, err := target.ListYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "2024"}, years)

	for _, year := range years {
		before, err := source.Get(ctx, year)
		require.NoError(t, err)
		after, err := target.Get(ctx, year)
		require.NoError(t, err)
		assert.Equal(t,
			warehouse.Project(before.Movements).Entries(),
			warehouse.Project(after.Movements).Entries(),
			"projections must survive the round trip for %s", year,
		)
	}
}

func TestCompressedBackupRoundTrip(t *testing.T) {
	source := domaintest.NewMemStore()
	source.Seed("2024", sampleDataset("MALTO PILS", 12.5))
	ctx := context.Background()

	payload, err := backup.NewService(source).ExportCompressed(ctx)
	require.NoError(t, err)

	plain, err := backup.NewService(source).Export(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, plain, payload)

	target := domaintest.NewMemStore()
	require.NoError(t, backup.NewService(target).Import(ctx, payload))

	d, err := target.Get(ctx, "2024")
	require.NoError(t, err)
	assert.Len(t, d.Movements, 1)
}

func TestImportRejectsBadKeysBeforeMutation(t *testing.T) {
	target := domaintest.NewMemStore()
	target.Seed("2022", sampleDataset("CARAMUNICH", 3))
	svc := backup.NewService(target)
	ctx := context.Background()

	cases := map[string]string{
		"not json":     `[1,2,3]`,
		"bad year key": `{"20x4": {}}`,
		"short key":    `{"24": {}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.Import(ctx, []byte(payload))
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeImportFormat, appErr.Code)

			// Existing data untouched.
			years, err := target.ListYears(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"2022"}, years)
		})
	}
}

func TestImportReplacesWholeStore(t *testing.T) {
	target := domaintest.NewMemStore()
	target.Seed("2020", sampleDataset("OLD", 1))
	ctx := context.Background()

	source := domaintest.NewMemStore()
	source.Seed("2024", sampleDataset("NEW", 2))
	payload, err := backup.NewService(source).Export(ctx)
	require.NoError(t, err)

	require.NoError(t, backup.NewService(target).Import(ctx, payload))

	years, err := target.ListYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024"}, years, "import replaces, never merges")
}
