package pagination

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Params описывает запрошенную страницу. Нумерация страниц с 1.
type Params struct {
	Page     int
	PageSize int
}

// Page метаданные страницы, которые отдаются вместе со списком.
type Page struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Normalize приводит параметры к допустимому диапазону.
func Normalize(page, pageSize int) Params {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{Page: page, PageSize: pageSize}
}

// Offset = (page-1)*pageSize.
func Offset(page, pageSize int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * pageSize
}

// TotalPages = ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func (p Params) Offset() int {
	return Offset(p.Page, p.PageSize)
}

func (p Params) Limit() int {
	return p.PageSize
}

// Meta собирает метаданные для найденного количества строк.
func (p Params) Meta(total int) Page {
	return Page{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: TotalPages(total, p.PageSize),
	}
}
