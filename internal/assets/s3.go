// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assets

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores assets in a single S3-compatible bucket, configured for
// path-style access (required by CEPH/Hetzner). Rename is copy-then-delete,
// which is not atomic: on failure the caller must treat the old object as
// possibly gone and abort the surrounding operation.
type S3 struct {
	client *s3.Client
	bucket string
}

// NewS3 returns an S3-backed asset store.
func NewS3(endpoint, region, accessKey, secretKey, bucket string) *S3 {
	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3{client: client, bucket: bucket}
}

// Store uploads the reader's bytes under filename with public-read ACL so
// item pages can reference the object directly.
func (c *S3) Store(ctx context.Context, filename string, r io.Reader) error {
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(filename),
		Body:        r,
		ContentType: aws.String("image/jpeg"),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return &Error{Op: "store", Filename: filename, Err: err}
	}
	return nil
}

// Rename copies the object to its new key and deletes the old one.
func (c *S3) Rename(ctx context.Context, oldFilename, newFilename string) error {
	_, err := c.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		CopySource: aws.String(c.bucket + "/" + oldFilename),
		Key:        aws.String(newFilename),
		ACL:        s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return &Error{Op: "rename", Filename: oldFilename, Err: err}
	}

	_, err = c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(oldFilename),
	})
	if err != nil {
		return &Error{Op: "rename", Filename: oldFilename, Err: err}
	}
	return nil
}

// Delete removes the object. S3 delete is idempotent, so a missing key is
// not an error.
func (c *S3) Delete(ctx context.Context, filename string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return &Error{Op: "delete", Filename: filename, Err: err}
	}
	return nil
}
