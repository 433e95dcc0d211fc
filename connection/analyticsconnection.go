package connection

import (
	"context"
	"fmt"

	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// GAConnection initializes the GA4 Data API service used for report queries.
func GAConnection(ctx context.Context, credentialsFile string) (*analyticsdata.Service, error) {
	service, err := analyticsdata.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error getting analytics data service: %w", err)
	}
	return service, nil
}
