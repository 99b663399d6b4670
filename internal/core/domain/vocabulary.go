package domain

// Значения типа объекта в словаре бэкенда.
const (
	BackendTypeHouse      = "casa"
	BackendTypeApartment  = "departamento"
	BackendTypeOffice     = "oficina"
	BackendTypeLand       = "terreno"
	BackendTypeCommercial = "commercial_local"
	BackendTypeWarehouse  = "warehouse"
	BackendTypeOther      = "other"
)

// Тип сделки в словаре бэкенда и на витрине.
const (
	BackendOperationSale = "venta"
	BackendOperationRent = "renta"

	ListingTypeSale = "Venta"
	ListingTypeRent = "Renta"
)

// CategoryOther - метка для неизвестных типов бэкенда.
const CategoryOther = "Otro"

// NotAvailable - значение-заглушка для отсутствующих числовых полей.
const NotAvailable = "N/A"

// StatusAvailable - бэкенд отдает только активные объявления.
const StatusAvailable = "Disponible"

// CategoryMapping - одна строка таблицы "метка витрины -> тип бэкенда".
type CategoryMapping struct {
	Label       string
	BackendType string
}

// Categories - закрытый словарь категорий витрины.
// Несколько меток сходятся в один тип бэкенда (Villa, Mansión -> casa),
// поэтому обратная таблица задается отдельно.
var Categories = []CategoryMapping{
	{Label: "Casa", BackendType: BackendTypeHouse},
	{Label: "Departamento", BackendType: BackendTypeApartment},
	{Label: "Villa", BackendType: BackendTypeHouse},
	{Label: "Penthouse", BackendType: BackendTypeApartment},
	{Label: "Mansión", BackendType: BackendTypeHouse},
	{Label: "Terreno", BackendType: BackendTypeLand},
	{Label: "Local Comercial", BackendType: BackendTypeCommercial},
	{Label: "Oficina", BackendType: BackendTypeOffice},
	{Label: "Bodega", BackendType: BackendTypeWarehouse},
}

// CategoryAliases - подписи из расширенной панели фильтров.
var CategoryAliases = []CategoryMapping{
	{Label: "Terreno / Lote", BackendType: BackendTypeLand},
	{Label: "Casa en condominio", BackendType: BackendTypeHouse},
}

// BackendTypeLabels - обратная таблица для нормализатора.
var BackendTypeLabels = map[string]string{
	BackendTypeHouse:      "Casa",
	BackendTypeApartment:  "Departamento",
	BackendTypeOffice:     "Oficina",
	BackendTypeLand:       "Terreno",
	BackendTypeCommercial: "Local Comercial",
	BackendTypeWarehouse:  "Bodega",
	BackendTypeOther:      CategoryOther,
}

// PriceBands - закрытый упорядоченный набор ценовых диапазонов.
var PriceBands = []string{
	"$500,000 - $1,000,000",
	"$1,000,000 - $2,000,000",
	"$2,000,000 - $5,000,000",
	"$5,000,000 - $10,000,000",
	"$10,000,000+",
}

var BedroomOptions = []string{"1", "2", "3", "4", "5+"}

var BathroomOptions = []string{"1", "1.5", "2", "2.5", "3", "3.5", "4+"}

var Amenities = []string{
	"Piscina", "Jardín", "Terraza", "Balcón", "Estacionamiento",
	"Seguridad 24/7", "Gimnasio", "Elevador", "Aire acondicionado",
	"Calefacción", "Chimenea", "Vista al mar", "Amueblado",
}

var Locations = []string{
	"Ciudad de México",
	"Monterrey",
	"Guadalajara",
	"Cancún",
	"Los Cabos",
	"Valle de Bravo",
	"San Miguel de Allende",
	"Puerto Vallarta",
	"Mérida",
	"Playa del Carmen",
}

var ListingTypes = []string{ListingTypeSale, ListingTypeRent}

// FilterOptions - словари для построения панели фильтров.
type FilterOptions struct {
	Categories      []string
	PriceBands      []string
	BedroomOptions  []string
	BathroomOptions []string
	Amenities       []string
	Locations       []string
	ListingTypes    []string
}
