package site

import (
	"context"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"webanalytics/dto"
	"webanalytics/middleware"
	"webanalytics/model"
)

const sitesCollection = "sites"

func SiteController(router *gin.Engine, firestoreClient *firestore.Client, accessSecret string) {
	routes := router.Group("/sites", middleware.AccessTokenMiddleware(accessSecret))
	{
		routes.GET("", func(c *gin.Context) {
			ListSites(c, firestoreClient)
		})

		admin := routes.Group("", middleware.AdminMiddleware())
		{
			admin.POST("", func(c *gin.Context) {
				CreateSite(c, firestoreClient)
			})
			admin.PUT("/:siteId", func(c *gin.Context) {
				UpdateSite(c, firestoreClient)
			})
		}
	}
}

func ListSites(c *gin.Context, firestoreClient *firestore.Client) {
	ctx := context.Background()
	iter := firestoreClient.Collection(sitesCollection).Documents(ctx)

	var sites []model.Site
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var site model.Site
		if err := doc.DataTo(&site); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse site data"})
			return
		}
		site.SiteID = doc.Ref.ID
		sites = append(sites, site)
	}

	if sites == nil {
		sites = []model.Site{}
	}
	c.JSON(http.StatusOK, sites)
}

func CreateSite(c *gin.Context, firestoreClient *firestore.Client) {
	var request dto.CreateSiteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	siteid := uuid.New().String()
	newSite := model.Site{
		SiteID:      siteid,
		Name:        request.Name,
		URL:         request.URL,
		PropertyID:  request.PropertyID,
		Description: request.Description,
	}

	ctx := context.Background()
	if _, err := firestoreClient.Collection(sitesCollection).Doc(siteid).Set(ctx, newSite); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create site"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Site created successfully",
		"siteID":  siteid,
	})
}

func UpdateSite(c *gin.Context, firestoreClient *firestore.Client) {
	siteID := c.Param("siteId")

	var request dto.UpdateSiteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if request.PropertyID == nil && request.Description == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data to update"})
		return
	}

	var updates []firestore.Update
	if request.PropertyID != nil {
		updates = append(updates, firestore.Update{Path: "propertyId", Value: *request.PropertyID})
	}
	if request.Description != nil {
		updates = append(updates, firestore.Update{Path: "description", Value: *request.Description})
	}

	ctx := context.Background()
	if _, err := firestoreClient.Collection(sitesCollection).Doc(siteID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update site"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Site updated successfully",
		"siteID":  siteID,
	})
}
