package storage

import (
	"bytes"
	"context"
	"fmt"

	"refgraph/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store kapselt den S3-Bucket für Bibliographie-Snapshots. Bucket und
// Basis-URL stecken im Store, damit Aufrufer nur Schlüssel und Inhalt kennen müssen.
type Store struct {
	client *s3.Client
	bucket string
	base   string
}

// NewStore verbindet sich mit dem konfigurierten S3-Endpunkt.
func NewStore(cfg *config.Config) (*Store, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.S3URL,
				SigningRegion:     cfg.S3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return &Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		base:   cfg.S3URL,
	}, nil
}

// Upload legt einen Snapshot unter dem Schlüssel ab und gibt den öffentlichen Link zurück.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.base, s.bucket, key), nil
}
