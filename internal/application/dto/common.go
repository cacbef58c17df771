package dto

// DefaultPageLimit tamaño de página cuando el cliente no envía limit.
const DefaultPageLimit = 20

// PageRequest paginación de listados (query limit/offset).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize aplica el límite por defecto, recorta a maxLimit y descarta offsets negativos.
func (p *PageRequest) Normalize(maxLimit int) {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página. Total cuenta todo lo que cumple el filtro.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
