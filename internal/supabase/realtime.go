package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish; row changes on
	// asset_processing_jobs already trigger Realtime subscriptions, so this
	// stays a hook for explicit events via the Realtime REST API.
	return nil
}

func (r *RealtimeClient) PublishProjectEvent(projectID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("project:%s", projectID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func AssetUploadedPayload(projectID, assetID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"project_id": projectID.String(),
		"asset_id":   assetID.String(),
		"status":     "uploaded",
	}
}

func JobStatusPayload(projectID, assetID uuid.UUID, status string) map[string]interface{} {
	return map[string]interface{}{
		"project_id": projectID.String(),
		"asset_id":   assetID.String(),
		"status":     status,
	}
}

func JobFailedPayload(projectID, assetID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"project_id": projectID.String(),
		"asset_id":   assetID.String(),
		"status":     "failed",
		"error":      errorMsg,
	}
}
