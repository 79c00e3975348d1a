package dto

type LoginCredentials struct {
	ID       string `json:"id"`
	Password string `json:"pw"`
}

type NewUser struct {
	ID       string `json:"id"`
	Password string `json:"pw"`
}

type NewNote struct {
	Content string `json:"content"`
}
