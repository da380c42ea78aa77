// Command backup dumps the Postgres database and uploads a gzipped
// export to S3-compatible storage, rotating out everything past the
// configured retention count.
package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"primetime/config"
	"primetime/storage"
)

func main() {
	log.Println("starting backup")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()

	dumpData, err := createDump(cfg)
	if err != nil {
		log.Fatalf("creating db dump: %v", err)
	}

	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		log.Fatalf("creating s3 client: %v", err)
	}

	fileName := fmt.Sprintf("backup-%s.sql.gz", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	if _, err := storage.UploadFile(ctx, s3Client, cfg.BackupS3Bucket, fileName, dumpData, cfg); err != nil {
		log.Fatalf("uploading to s3: %v", err)
	}
	log.Printf("uploaded backup to s3://%s/%s", cfg.BackupS3Bucket, fileName)

	if err := rotateBackups(ctx, s3Client, cfg); err != nil {
		log.Fatalf("rotating old backups: %v", err)
	}

	log.Println("backup complete")
}

func createDump(cfg *config.Config) ([]byte, error) {
	cmd := exec.Command("pg_dump",
		"-h", cfg.DBHost,
		"-U", cfg.DBUser,
		"-d", cfg.DBName,
		"-w", // password supplied via PGPASSWORD
	)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", cfg.DBPassword))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := io.Copy(gzipWriter, stdout); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func rotateBackups(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	output, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.BackupS3Bucket),
	})
	if err != nil {
		return err
	}

	if len(output.Contents) <= cfg.KeepBackups {
		log.Printf("at most %d backups present, nothing to rotate", cfg.KeepBackups)
		return nil
	}

	sort.Slice(output.Contents, func(i, j int) bool {
		return output.Contents[i].LastModified.After(*output.Contents[j].LastModified)
	})

	for _, obj := range output.Contents[cfg.KeepBackups:] {
		log.Printf("deleting old backup: %s", *obj.Key)
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.BackupS3Bucket),
			Key:    obj.Key,
		}); err != nil {
			log.Printf("deleting %s failed: %v", *obj.Key, err)
		}
	}

	return nil
}
