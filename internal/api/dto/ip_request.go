package dto

type IPRequest struct {
	Description string `json:"description"`
}
