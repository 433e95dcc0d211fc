package dto

type CreateSiteRequest struct {
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url" binding:"required"`
	PropertyID  string `json:"propertyId"`
	Description string `json:"description"`
}

type UpdateSiteRequest struct {
	PropertyID  *string `json:"propertyId"`
	Description *string `json:"description"`
}
