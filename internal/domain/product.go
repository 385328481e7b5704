package domain

// Product описывает продукт каталога.
// Каталог загружается один раз при старте и не изменяется во время обработки запросов.
type Product struct {
	ID                string
	Title             string
	Brand             string
	Price             int64 // Цена хранится в центах
	Description       string
	Images            []string
	Categories        []string
	Material          string
	Color             string
	CountryOfOrigin   string
	Manufacturer      string
	PackageDimensions string
}

func NewProduct(id string, title string, brand string, price int64) *Product {
	return &Product{
		ID:    id,
		Title: title,
		Brand: brand,
		Price: price,
	}
}

// PrimaryImage возвращает первый URL изображения продукта или пустую строку.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
