package s3

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/electriceye-tools/eectl/internal/aws/apierr"
)

type S3API interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

type Client struct {
	api S3API
}

func NewClient(api S3API) *Client {
	return &Client{api: api}
}

// PutJSON uploads a JSON document to the given bucket and key.
func (c *Client) PutJSON(ctx context.Context, bucket, key string, body []byte) error {
	_, err := c.api.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return apierr.Classify("PutObject", bucket+"/"+key, err)
	}
	return nil
}
