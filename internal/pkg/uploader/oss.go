package uploader

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"gas_marketplace/internal/pkg/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Uploader 文件存储协作方：收文件，返回可持久访问的 URL
type Uploader interface {
	UploadFile(category string, file *multipart.FileHeader) (string, error)
}

type AliyunOSSUploader struct {
	client *oss.Client
	bucket *oss.Bucket
	config config.OSSConfig
}

func NewAliyunOSSUploader() (*AliyunOSSUploader, error) {
	cfg := config.GlobalConfig.OSS
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		client: client,
		bucket: bucket,
		config: cfg,
	}, nil
}

// UploadFile 上传到 OSS，对象名为 <category>/YYYYMMDD/uuid.ext
// category 用来隔离 KYC 证件和头像等不同用途的文件
func (u *AliyunOSSUploader) UploadFile(category string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	objectKey := fmt.Sprintf("%s/%s/%s%s",
		category, time.Now().Format("20060102"), uuid.New().String(), ext)

	if err := u.bucket.PutObject(objectKey, src); err != nil {
		return "", err
	}

	// bucket 配置为 public-read，直接拼公网 URL
	url := fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, objectKey)
	return url, nil
}

// GlobalUploader instance
var GlobalUploader Uploader

func InitUploader() error {
	up, err := NewAliyunOSSUploader()
	if err != nil {
		return err
	}
	GlobalUploader = up
	return nil
}
