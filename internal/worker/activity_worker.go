package worker

import (
	"github.com/civicbridge/complaint-service/internal/service"
)

// StartActivityWorker registers the activity handlers on the dispatcher.
func StartActivityWorker(activityService *service.ActivityService) {
	if activityService == nil {
		return
	}
	activityService.RegisterHandlers()
}
