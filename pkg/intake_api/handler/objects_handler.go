package handler

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	problem "github.com/s10-intake/intake-api/pkg/intake_api/helpers/problem"
	"github.com/s10-intake/intake-api/pkg/intake_api/models"
	"github.com/s10-intake/intake-api/pkg/intake_api/storage"
)

// ObjectsController exposes the raw bucket pass-throughs.
type ObjectsController struct {
	Store storage.ObjectStore
}

func NewObjectsController(store storage.ObjectStore) *ObjectsController {
	return &ObjectsController{Store: store}
}

// CheckConnection handles GET /s3/check-connection
func (c *ObjectsController) CheckConnection(ctx *gin.Context) (*models.ConnectionStatus, error) {
	buckets, err := c.Store.ListBuckets(ctx.Request.Context())
	if err != nil {
		return nil, problem.NewStoreUnavailable("failed to connect to S3: " + err.Error())
	}

	status := &models.ConnectionStatus{
		Status:     "success",
		Message:    "Successfully connected to S3",
		AllBuckets: buckets,
	}
	for _, name := range buckets {
		if name == c.Store.Bucket() {
			status.BucketExists = true
		}
	}
	if !status.BucketExists {
		status.Status = "warning"
		status.Message = "Connected to S3 but specified bucket does not exist"
	}
	return status, nil
}

// ListBuckets handles GET /s3/buckets
func (c *ObjectsController) ListBuckets(ctx *gin.Context) (*models.BucketsResponse, error) {
	buckets, err := c.Store.ListBuckets(ctx.Request.Context())
	if err != nil {
		return nil, problem.NewStoreUnavailable(err.Error())
	}
	return &models.BucketsResponse{Buckets: buckets}, nil
}

// ListObjects handles GET /s3/objects
func (c *ObjectsController) ListObjects(ctx *gin.Context, params *models.ListObjectsParams) (*models.ObjectsResponse, error) {
	objects, err := c.Store.List(ctx.Request.Context(), params.Prefix)
	if err != nil {
		return nil, problem.NewStoreUnavailable(err.Error())
	}
	return &models.ObjectsResponse{Objects: objects}, nil
}

// DownloadObject handles GET /s3/download/*key
func (c *ObjectsController) DownloadObject(ctx *gin.Context, params *models.ObjectKeyParams) error {
	key := objectKey(params)
	data, contentType, err := c.Store.Get(ctx.Request.Context(), key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return problem.NewNotFound(key, fmt.Sprintf("File %s not found", key))
	}
	if err != nil {
		return problem.NewStoreUnavailable(err.Error())
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.Header("Content-Disposition", "attachment; filename="+path.Base(key))
	ctx.Data(200, contentType, data)
	return nil
}

// DeleteObject handles DELETE /s3/delete/*key
func (c *ObjectsController) DeleteObject(ctx *gin.Context, params *models.ObjectKeyParams) (*models.DeleteObjectResponse, error) {
	key := objectKey(params)
	if err := c.Store.Delete(ctx.Request.Context(), key); err != nil {
		return nil, problem.NewStoreUnavailable(err.Error())
	}
	return &models.DeleteObjectResponse{
		Status:  "success",
		Message: fmt.Sprintf("File %s deleted successfully", key),
	}, nil
}

// objectKey strips the leading slash a gin wildcard param carries.
func objectKey(params *models.ObjectKeyParams) string {
	return strings.TrimPrefix(params.Key, "/")
}
