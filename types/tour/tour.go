package tour

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ReviewCreateRequest represents a public review submission for a tour.
type ReviewCreateRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"required,max=200"`
	Comment string `json:"comment" validate:"required"`
}

func (r ReviewCreateRequest) Validate() error {
	return validate.Struct(r)
}
