package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
)

// S3Storage хранит обложки в бакете S3. Ключ вида "covers/<userID>/<file>".
type S3Storage struct {
	client         *s3.Client
	uploader       *manager.Uploader
	region         string
	bucket         string
	maxUploadBytes int64
}

func NewS3Storage(ctx context.Context, cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.AWSRegion == "" {
		return nil, fmt.Errorf("storage: AWS_REGION не задан")
	}
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("storage: S3_BUCKET не задан")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	// без статических ключей работает стандартная цепочка (IAM роль, env, профиль)
	if cfg.AWSAccessKey != "" && cfg.AWSSecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось загрузить конфигурацию AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		client:         client,
		uploader:       manager.NewUploader(client),
		region:         cfg.AWSRegion,
		bucket:         cfg.S3Bucket,
		maxUploadBytes: cfg.MaxUploadSizeMB * 1024 * 1024,
	}, nil
}

// Save загружает файл. Размер проверяется до загрузки, поэтому тело
// буферизуется в пределах лимита.
func (s *S3Storage) Save(ctx context.Context, userID uuid.UUID, originalName, contentType string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxUploadBytes+1))
	if err != nil {
		return "", 0, fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return "", 0, tooLarge(s.maxUploadBytes)
	}

	key := path.Join("covers", userID.String(), objectName(originalName, contentType))

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err = s.uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", 0, fmt.Errorf("storage: s3 upload failed: %w", err)
	}
	return key, int64(len(data)), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	ctxDel, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.DeleteObject(ctxDel, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: s3 delete failed: %w", err)
	}
	return nil
}

func (s *S3Storage) URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

var _ repository.ImageStorage = (*S3Storage)(nil)
