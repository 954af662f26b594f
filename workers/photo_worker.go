package workers

import (
	"log"
	"sync"

	"github.com/mwhited/robocatalog/config"
	"github.com/mwhited/robocatalog/repository"
	"github.com/mwhited/robocatalog/utils"
)

// PhotoJob is one stored photo awaiting thumbnail generation and EXIF
// extraction.
type PhotoJob struct {
	PhotoID  uint
	FilePath string
}

// PhotoProcessor runs a fixed pool of workers that post-process photos
// after upload. Uploads stay synchronous; only derived data is produced
// here.
type PhotoProcessor struct {
	JobQueue chan PhotoJob
	Config   config.Config
	Photos   repository.PhotoRepositoryInterface
	Wg       sync.WaitGroup
	Pending  map[uint]bool
	Mutex    sync.Mutex
}

// NewPhotoProcessor starts the worker pool.
func NewPhotoProcessor(cfg config.Config, photos repository.PhotoRepositoryInterface, queueSize, numWorkers int) *PhotoProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	proc := &PhotoProcessor{
		JobQueue: make(chan PhotoJob, queueSize),
		Config:   cfg,
		Photos:   photos,
		Pending:  make(map[uint]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.Printf("Started %d photo processing worker(s) with queue size %d", numWorkers, queueSize)
	return proc
}

// Enqueue schedules a photo for post-processing. Photos already queued
// are skipped; a full queue drops the job rather than blocking the
// upload request.
func (pp *PhotoProcessor) Enqueue(photoID uint, filePath string) {
	pp.Mutex.Lock()
	if pp.Pending[photoID] {
		pp.Mutex.Unlock()
		return
	}
	pp.Pending[photoID] = true
	pp.Mutex.Unlock()

	select {
	case pp.JobQueue <- PhotoJob{PhotoID: photoID, FilePath: filePath}:
	default:
		log.Printf("Worker queue full; dropping post-processing for photo %d", photoID)
		pp.Mutex.Lock()
		delete(pp.Pending, photoID)
		pp.Mutex.Unlock()
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (pp *PhotoProcessor) Stop() {
	close(pp.JobQueue)
	pp.Wg.Wait()
}

func (pp *PhotoProcessor) worker(id int) {
	defer pp.Wg.Done()
	log.Printf("Photo worker %d started", id)

	for job := range pp.JobQueue {
		thumbPath, thumbErr := utils.GenerateThumbnail(job.FilePath, pp.Config.ThumbnailsPath, pp.Config.ThumbnailMaxSize, pp.Config.ThumbnailMaxSize)
		var thumbPtr *string
		if thumbErr == nil {
			thumbPtr = &thumbPath
		} else {
			log.Printf("Worker %d: ERROR generating thumbnail for photo %d: %v", id, job.PhotoID, thumbErr)
		}
		if err := pp.Photos.UpdateThumbnailResult(job.PhotoID, thumbPtr, thumbErr); err != nil {
			log.Printf("Worker %d: ERROR saving thumbnail result for photo %d: %v", id, job.PhotoID, err)
		}

		meta, metaErr := utils.GetImageMetadata(job.FilePath)
		if metaErr != nil {
			log.Printf("Worker %d: ERROR extracting metadata for photo %d: %v", id, job.PhotoID, metaErr)
		} else if meta != nil {
			err := pp.Photos.UpdateMetadata(job.PhotoID, meta.Width, meta.Height, meta.CameraMake, meta.CameraModel, meta.TakenAt)
			if err != nil {
				log.Printf("Worker %d: ERROR saving metadata for photo %d: %v", id, job.PhotoID, err)
			}
		}

		pp.Mutex.Lock()
		delete(pp.Pending, job.PhotoID)
		pp.Mutex.Unlock()
	}
	log.Printf("Photo worker %d stopping: Job queue closed", id)
}
