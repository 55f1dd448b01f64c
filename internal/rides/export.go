package rides

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"ride-marketplace-api-server/internal/apperror"

	"github.com/google/uuid"
)

// SnapshotUploader stores an exported document and returns where it lives.
type SnapshotUploader interface {
	UploadJSON(ctx context.Context, key string, body []byte) (string, error)
}

type Snapshot struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

// ExportSnapshot writes every ride, bids included, as one JSON array under
// prefix and returns the uploaded location.
func (s *Service) ExportSnapshot(ctx context.Context, uploader SnapshotUploader, prefix string) (snap Snapshot, err error) {
	ctx, span := s.tracer.Start(ctx, "rides.ExportSnapshot")
	defer func() { endSpan(span, err) }()

	rides, err := s.ListRides(ctx, "")
	if err != nil {
		return Snapshot{}, err
	}

	body, err := json.Marshal(rides)
	if err != nil {
		return Snapshot{}, apperror.Internal(err, "Failed to encode ride snapshot")
	}

	name := fmt.Sprintf("rides-%s-%s.json",
		s.now().Format("20060102T150405Z"),
		strings.ToUpper(uuid.New().String()[:8]),
	)
	key := path.Join(prefix, name)

	url, err := uploader.UploadJSON(ctx, key, body)
	if err != nil {
		return Snapshot{}, apperror.Internal(err, "Failed to upload ride snapshot")
	}

	return Snapshot{Key: key, URL: url, Count: len(rides)}, nil
}
