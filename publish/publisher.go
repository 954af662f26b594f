package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/mwhited/robocatalog/repository"
	"github.com/mwhited/robocatalog/utils"
)

// Summary reports the outcome of one publish run.
type Summary struct {
	Uploaded int
	Skipped  int
	Failed   int
}

// Publisher walks every photo row, uploads the referenced files to the
// configured target keyed photos/{category}/robot_{id}/{filename}, and
// writes the {photo_id: public_url} mapping file consumed by the static
// API exporter. Rows whose file is missing on disk are skipped; upload
// failures are logged and do not abort the run.
type Publisher struct {
	Photos      repository.PhotoRepositoryInterface
	Target      Target
	MappingPath string
}

// Run performs the batch upload and writes the mapping file.
func (p *Publisher) Run(ctx context.Context) (Summary, error) {
	photos, err := p.Photos.ListPublishable()
	if err != nil {
		return Summary{}, err
	}

	log.Printf("publish: uploading %d photos via %s", len(photos), p.Target.Name())

	summary := Summary{}
	mapping := make(map[string]string)

	for _, photo := range photos {
		info, err := os.Stat(photo.FilePath)
		if err != nil {
			log.Printf("publish: skipping %s - file not found", photo.FileName)
			summary.Skipped++
			continue
		}

		key := fmt.Sprintf("photos/%s/robot_%d/%s", KeySlug(photo.CategoryName), photo.RobotID, photo.FileName)

		file, err := os.Open(photo.FilePath)
		if err != nil {
			log.Printf("publish: error opening %s: %v", photo.FilePath, err)
			summary.Failed++
			continue
		}

		url, err := p.Target.Store(ctx, key, utils.ContentTypeForPhoto(photo.FileName), file, info.Size())
		file.Close()
		if err != nil {
			log.Printf("publish: error uploading %s: %v", photo.FileName, err)
			summary.Failed++
			continue
		}

		mapping[strconv.FormatUint(uint64(photo.PhotoID), 10)] = url
		summary.Uploaded++
		log.Printf("publish: uploaded %s -> %s", photo.FileName, key)
	}

	if err := WriteURLMapping(p.MappingPath, mapping); err != nil {
		return summary, err
	}

	log.Printf("publish: done (%d uploaded, %d skipped, %d failed); mapping saved to %s",
		summary.Uploaded, summary.Skipped, summary.Failed, p.MappingPath)
	return summary, nil
}

// WriteURLMapping persists the photo-ID to public-URL mapping.
func WriteURLMapping(path string, mapping map[string]string) error {
	data, err := json.MarshalIndent(mapping, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal URL mapping: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write URL mapping %s: %w", path, err)
	}
	return nil
}

// ReadURLMapping loads a previously written mapping file.
func ReadURLMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read URL mapping %s: %w", path, err)
	}
	mapping := make(map[string]string)
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse URL mapping %s: %w", path, err)
	}
	return mapping, nil
}
