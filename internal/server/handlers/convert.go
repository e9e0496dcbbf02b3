package handlers

import (
	"github.com/iudanet/clinicsync/internal/models"
	"github.com/iudanet/clinicsync/pkg/api"
)

func toAPIPatient(p *models.Patient) api.Patient {
	return api.Patient{
		ID:        p.ID,
		Name:      p.Name,
		DOB:       p.DOB,
		Sex:       p.Sex,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toAPIConsultation(c *models.Consultation, patient *models.Patient) api.Consultation {
	data := c.Data
	if data == nil {
		data = map[string]any{}
	}
	out := api.Consultation{
		ID:               c.ID,
		PatientID:        c.PatientID,
		Status:           c.Status,
		VisitType:        c.VisitType,
		Location:         c.Location,
		Language:         c.Language,
		ConsultationData: data,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if patient != nil {
		p := toAPIPatient(patient)
		out.Patient = &p
	}
	return out
}

func toAPIGuide(g *models.Guide) api.Guide {
	out := api.Guide{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
	}
	for _, tr := range g.Translations {
		out.Translations = append(out.Translations, api.GuideTranslation{
			Language:    tr.Language,
			Title:       tr.Title,
			Description: tr.Description,
		})
	}
	return out
}

func fromAPIGuide(g api.Guide) *models.Guide {
	out := &models.Guide{
		Title:       g.Title,
		Description: g.Description,
		Category:    g.Category,
	}
	for _, tr := range g.Translations {
		out.Translations = append(out.Translations, models.GuideTranslation{
			Language:    tr.Language,
			Title:       tr.Title,
			Description: tr.Description,
		})
	}
	return out
}
