package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. Item trae los contadores actuales (sin cambios)
// cuando el rechazo es por stock.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Item    *ItemResponse `json:"item,omitempty"`
}
