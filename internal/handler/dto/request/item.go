package request

type CreateItemRequest struct {
	Name string `json:"name" binding:"required"`
}

type SetItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
