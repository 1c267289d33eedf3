package request

type UpsertFaqRequest struct {
	Question  string `json:"question" binding:"required,max=500"`
	Answer    string `json:"answer" binding:"required,max=5000"`
	Position  int32  `json:"position"`
	Published bool   `json:"published"`
}
