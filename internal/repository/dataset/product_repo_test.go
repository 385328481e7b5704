package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

const testCSV = `uniq_id,title,brand,price,description,categories,material,color,images
p1,Oak Table,Nordic,$299.00,Solid oak dining table.,"['Furniture', 'Dining']",Wood,Brown,"['http://img/p1.jpg', 'http://img/p1b.jpg']"
p2,Velvet Chair,Acme,"1,299.50",Soft chair.,"['Furniture', 'Chairs']",Velvet,Green,
p3,Broken Price,Acme,abc,Bad row.,,,,
,No ID,Acme,$10.00,Row without id.,,,,
p4,Floor Lamp,Lumen,$49.99,,['Lighting'],Metal,Black,
`

func loadTestRepo(t *testing.T, csv string) *ProductRepo {
	t.Helper()

	repo, err := load(strings.NewReader(csv), nopLogger{})
	require.NoError(t, err)
	return repo
}

func TestLoad_ParsesValidRows(t *testing.T) {
	repo := loadTestRepo(t, testCSV)

	products, err := repo.List(context.Background())
	require.NoError(t, err)

	// Строки с кривой ценой и без id пропущены
	require.Len(t, products, 3)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "p2", products[1].ID)
	assert.Equal(t, "p4", products[2].ID)
}

func TestLoad_ProductFields(t *testing.T) {
	repo := loadTestRepo(t, testCSV)

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "Oak Table", p.Title)
	assert.Equal(t, "Nordic", p.Brand)
	assert.EqualValues(t, 29900, p.Price)
	assert.Equal(t, []string{"Furniture", "Dining"}, p.Categories)
	assert.Equal(t, []string{"http://img/p1.jpg", "http://img/p1b.jpg"}, p.Images)
	assert.Equal(t, "http://img/p1.jpg", p.PrimaryImage())
}

func TestLoad_PriceWithThousandsSeparator(t *testing.T) {
	repo := loadTestRepo(t, testCSV)

	p, err := repo.GetByID(context.Background(), "p2")
	require.NoError(t, err)
	assert.EqualValues(t, 129950, p.Price)
}

func TestLoad_DuplicateIDReplacesPrevious(t *testing.T) {
	csv := `uniq_id,title,price
p1,First Title,$10.00
p1,Second Title,$20.00
`
	repo := loadTestRepo(t, csv)

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Equal(t, "Second Title", products[0].Title)
	assert.EqualValues(t, 2000, products[0].Price)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := loadTestRepo(t, testCSV)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestNewProductRepo_MissingFile(t *testing.T) {
	_, err := NewProductRepo("/nonexistent/catalog.csv", nopLogger{})
	assert.Error(t, err)
}

func TestNewProductRepo_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))

	repo, err := NewProductRepo(path, nopLogger{})
	require.NoError(t, err)

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestParsePriceToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{in: "$24.99", want: 2499},
		{in: "24.99", want: 2499},
		{in: "0", want: 0},
		{in: "$1,299.00", want: 129900},
		{in: " $5.5 ", want: 550},
		{in: "", wantErr: e.ErrInvalidPrice},
		{in: "abc", wantErr: e.ErrInvalidPrice},
		{in: "-5.00", wantErr: e.ErrInvalidPrice},
		{in: "1.999", wantErr: e.ErrPricePrecision},
	}

	for _, tc := range cases {
		got, err := parsePriceToCents(tc.in)
		if tc.wantErr != nil {
			assert.ErrorIs(t, err, tc.wantErr, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseListField(t *testing.T) {
	assert.Nil(t, parseListField(""))
	assert.Nil(t, parseListField("[]"))
	assert.Equal(t, []string{"One"}, parseListField("One"))
	assert.Equal(t, []string{"One", "Two"}, parseListField("One, Two"))
	assert.Equal(t,
		[]string{"Home & Kitchen", "Storage & Organization"},
		parseListField(`['Home & Kitchen', 'Storage & Organization']`),
	)
	assert.Equal(t, []string{"Quoted"}, parseListField(`["Quoted"]`))
}
