package project

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ironsheep/spectra-mcp/internal/model"
)

// Prediction is one object reported by the detector, in center/size form.
type Prediction struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// PagePredictions is the detector response for one page image.
type PagePredictions struct {
	// Page is 1-indexed. Zero takes the position in the enclosing list.
	Page        int          `json:"page"`
	Predictions []Prediction `json:"predictions"`
}

// BBox converts the center/size form to corner coordinates, truncating
// toward zero.
func (pr Prediction) BBox() model.BBox {
	return model.BBox{
		X1: int(pr.X - pr.Width/2),
		Y1: int(pr.Y - pr.Height/2),
		X2: int(pr.X + pr.Width/2),
		Y2: int(pr.Y + pr.Height/2),
	}
}

// ReadPredictions decodes a JSON array of per-page detector responses.
func ReadPredictions(r io.Reader) ([]PagePredictions, error) {
	var pages []PagePredictions
	if err := json.NewDecoder(r).Decode(&pages); err != nil {
		return nil, fmt.Errorf("failed to decode predictions: %w", err)
	}
	return pages, nil
}

// DetectionsFromPredictions turns detector responses into model detections,
// dropping predictions scored below minConfidence. Class labels are left raw;
// ImportModelDetections maps them.
func DetectionsFromPredictions(pages []PagePredictions, minConfidence float64) []*model.Detection {
	var out []*model.Detection
	for i, pg := range pages {
		page := pg.Page
		if page == 0 {
			page = i + 1
		}
		for _, pr := range pg.Predictions {
			if pr.Confidence < minConfidence {
				continue
			}
			out = append(out, model.NewDetection(pr.Class, pr.Confidence, pr.BBox(), page, model.SourceModel))
		}
	}
	return out
}
