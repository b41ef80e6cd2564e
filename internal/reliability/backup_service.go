package reliability

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/stratolab/strato-go/internal/database"
)

// maxRetainedBackups bounds how many backup objects stay in the bucket.
const maxRetainedBackups = 14

// backupPrefix namespaces the backup objects in the bucket.
const backupPrefix = "runs-backup-"

// BackupMetadata describes one uploaded backup.
type BackupMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
}

// BackupService snapshots the run store and ships it to object storage.
type BackupService struct {
	client  *S3Client
	db      *database.DB
	dataDir string
	log     zerolog.Logger
}

// NewBackupService creates the backup service.
func NewBackupService(client *S3Client, db *database.DB, dataDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		client:  client,
		db:      db,
		dataDir: dataDir,
		log:     log.With().Str("service", "backup").Logger(),
	}
}

// CreateAndUpload snapshots the database, compresses it, uploads the
// archive with a metadata sidecar, and prunes old backups.
func (s *BackupService) CreateAndUpload(ctx context.Context) error {
	s.log.Info().Msg("Starting backup")
	start := time.Now()

	stagingDir := filepath.Join(s.dataDir, "backup-staging")
	if err := os.MkdirAll(stagingDir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	// VACUUM INTO writes a consistent point-in-time snapshot without
	// blocking concurrent readers.
	snapshotPath := filepath.Join(stagingDir, "runs.db")
	if _, err := s.db.Conn().ExecContext(ctx, "VACUUM INTO ?", snapshotPath); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}

	checksum, err := fileChecksum(snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to checksum snapshot: %w", err)
	}
	info, err := os.Stat(snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to stat snapshot: %w", err)
	}

	archivePath := snapshotPath + ".gz"
	if err := gzipFile(snapshotPath, archivePath); err != nil {
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}

	timestamp := time.Now().UTC().Format("2006-01-02-150405")
	key := backupPrefix + timestamp + ".gz"

	archive, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	if err := s.client.Upload(ctx, key, archive); err != nil {
		return err
	}

	metadata := BackupMetadata{
		Timestamp: time.Now().UTC(),
		Database:  s.db.Name(),
		SizeBytes: info.Size(),
		Checksum:  checksum,
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := s.client.Upload(ctx, key+".meta.json", bytes.NewReader(metadataJSON)); err != nil {
		return err
	}

	if err := s.prune(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Backup pruning failed")
	}

	s.log.Info().
		Str("key", key).
		Int64("size_bytes", info.Size()).
		Dur("elapsed", time.Since(start)).
		Msg("Backup completed")
	return nil
}

// ListBackups returns the stored backup archives, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]ObjectInfo, error) {
	objects, err := s.client.List(ctx, backupPrefix)
	if err != nil {
		return nil, err
	}

	archives := objects[:0]
	for _, obj := range objects {
		if filepath.Ext(obj.Key) == ".gz" {
			archives = append(archives, obj)
		}
	}
	return archives, nil
}

// prune deletes archives (and their metadata sidecars) beyond the
// retention count.
func (s *BackupService) prune(ctx context.Context) error {
	archives, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(archives) <= maxRetainedBackups {
		return nil
	}

	for _, obj := range archives[maxRetainedBackups:] {
		s.log.Info().
			Str("key", obj.Key).
			Str("timestamp", keyTimestamp(obj.Key)).
			Msg("Pruning expired backup")
		if err := s.client.Delete(ctx, obj.Key); err != nil {
			return err
		}
		if err := s.client.Delete(ctx, obj.Key+".meta.json"); err != nil {
			s.log.Warn().Err(err).Str("key", obj.Key).Msg("Failed to delete metadata sidecar")
		}
	}
	return nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		_ = gz.Close()
		return err
	}
	return gz.Close()
}

// BackupJob adapts the service to the scheduler.
type BackupJob struct {
	service *BackupService
}

// NewBackupJob wraps the backup service as a scheduled job.
func NewBackupJob(service *BackupService) *BackupJob {
	return &BackupJob{service: service}
}

// Name returns the job name for the scheduler.
func (j *BackupJob) Name() string {
	return "runs_backup"
}

// Run executes one backup cycle with a generous upload timeout.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return j.service.CreateAndUpload(ctx)
}
