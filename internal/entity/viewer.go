package entity

type ViewerData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
