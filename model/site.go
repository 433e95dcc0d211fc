package model

type Site struct {
	SiteID      string `firestore:"-" json:"id"`
	Name        string `firestore:"name,omitempty" json:"name"`
	URL         string `firestore:"url,omitempty" json:"url"`
	PropertyID  string `firestore:"propertyId" json:"propertyId"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`
}
