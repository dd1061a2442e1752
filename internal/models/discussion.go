package models

// Comment is stored under discussions/{courseId}/{pushId}.
type Comment struct {
	UserID    string `json:"userId"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type CommentView struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	ProfilePicture string `json:"profilePicture"`
	Message        string `json:"message"`
	CreatedAt      string `json:"createdAt"`
}
