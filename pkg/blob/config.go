package blob

import "time"

// Config contains settings for S3 and S3-compatible object storage.
// Endpoint and ForcePathStyle support MinIO and similar local stacks.
type Config struct {
	Bucket         string        `env:"S3_BUCKET,required"`
	Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"S3_ACCESS_KEY_ID"`
	SecretKey      string        `env:"S3_SECRET_KEY"`
	Endpoint       string        `env:"S3_ENDPOINT"`
	ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
	PresignTTL     time.Duration `env:"S3_PRESIGN_TTL" envDefault:"15m"`
	MaxObjectSize  int64         `env:"S3_MAX_OBJECT_SIZE" envDefault:"5242880"`
}
