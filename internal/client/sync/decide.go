package sync

import (
	"time"

	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

type route int

const (
	routeUnknown route = iota
	routeNewPatient
	routeNewConsultation
	routeEdit
)

// classify выбирает ветку обработки по форме ключа
func classify(key string) route {
	kind, ok := models.KindForKey(key)
	if !ok {
		return routeUnknown
	}
	switch kind {
	case models.KindNewPatient:
		return routeNewPatient
	case models.KindNewConsultation:
		return routeNewConsultation
	case models.KindConsultationEdit:
		return routeEdit
	default:
		return routeUnknown
	}
}

// isConflict: серверная версия строго новее локальной правки.
// Равные отметки конфликтом не считаются.
func isConflict(local time.Time, server *api.Consultation) bool {
	if server == nil {
		return false
	}
	return server.LastModified().After(local)
}

// becameCompleted: правка переводит консультацию в completed
func becameCompleted(localStatus string, server *api.Consultation) bool {
	return localStatus == api.StatusCompleted && (server == nil || server.Status != api.StatusCompleted)
}

func defaultVisitType(v string, extra map[string]any) string {
	if v != "" {
		return v
	}
	if s, ok := extra["visit_type"].(string); ok && s != "" {
		return s
	}
	return api.VisitTypePaid
}
