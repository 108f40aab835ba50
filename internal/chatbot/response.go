package chatbot

// ResponseType tells the client how to render Data
type ResponseType string

const (
	TypeText        ResponseType = "text"
	TypeProductList ResponseType = "product_list"
	TypeOrderStatus ResponseType = "order_status"
	TypeStockInfo   ResponseType = "stock_info"
)

// Response is the reply to one question. A failed Response carries only
// ErrorMessage; a successful one carries Message, Type and optional Data.
type Response struct {
	Message      string           `json:"message,omitempty"`
	Type         ResponseType     `json:"type,omitempty"`
	Data         []map[string]any `json:"data,omitempty"`
	Success      bool             `json:"success"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}

func textResponse(message string) Response {
	return Response{Message: message, Type: TypeText, Success: true}
}

func dataResponse(message string, typ ResponseType, data []map[string]any) Response {
	return Response{Message: message, Type: typ, Data: data, Success: true}
}

func errorResponse(errorMessage string) Response {
	return Response{ErrorMessage: errorMessage, Success: false}
}
