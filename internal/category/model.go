package category

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CreateCategoryInput struct {
	Name string `json:"name" validate:"required"`
}
