package intake_api

import (
	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/s10-intake/intake-api/pkg/intake_api/handler"
	"github.com/s10-intake/intake-api/pkg/intake_api/middleware"
	"github.com/wI2L/fizz"
	"github.com/wI2L/fizz/openapi"
)

func NewRouter(apiVersion string, intake *handler.IntakeController, objects *handler.ObjectsController) *fizz.Fizz {
	g := gin.Default()
	f := fizz.NewFromEngine(g)

	info := &openapi.Info{
		Title:       "Form intake API",
		Description: "Accepts template uploads and FormSG webhook submissions",
		Version:     apiVersion,
	}

	f.POST("/upload-template",
		[]fizz.OperationOption{fizz.Summary("Upload a template keys file")},
		tonic.Handler(intake.UploadTemplate, 200),
	)
	f.GET("/templates",
		[]fizz.OperationOption{fizz.Summary("List all registered templates")},
		tonic.Handler(intake.ListTemplates, 200),
	)
	f.GET("/templates/:id",
		[]fizz.OperationOption{fizz.Summary("Retrieve a single template")},
		tonic.Handler(intake.RetrieveTemplate, 200),
	)

	f.POST("/packages",
		[]fizz.OperationOption{fizz.Summary("Register a package against a template")},
		tonic.Handler(intake.CreatePackage, 201),
	)
	f.GET("/packages",
		[]fizz.OperationOption{fizz.Summary("List all packages")},
		tonic.Handler(intake.ListPackages, 200),
	)

	f.POST("/formsg-webhook",
		[]fizz.OperationOption{fizz.Summary("Receive an encrypted FormSG submission")},
		tonic.Handler(intake.ReceiveWebhook, 200),
	)
	f.GET("/submissions",
		[]fizz.OperationOption{fizz.Summary("List decrypted form submissions")},
		tonic.Handler(intake.ListSubmissions, 200),
	)

	s3 := f.Group("/s3", "Object store", "Raw pass-throughs to the S3 bucket")
	s3.GET("/check-connection",
		[]fizz.OperationOption{fizz.Summary("Check connectivity and bucket existence")},
		tonic.Handler(objects.CheckConnection, 200),
	)
	s3.GET("/buckets",
		[]fizz.OperationOption{fizz.Summary("List all buckets")},
		tonic.Handler(objects.ListBuckets, 200),
	)
	s3.GET("/objects",
		[]fizz.OperationOption{fizz.Summary("List objects in the bucket")},
		tonic.Handler(objects.ListObjects, 200),
	)
	// wildcard so nested keys like submissions/<id>/<field> resolve
	s3.GET("/download/*key",
		[]fizz.OperationOption{fizz.Summary("Download an object")},
		tonic.Handler(objects.DownloadObject, 200),
	)

	// destructive, so behind a write scope
	admin := f.Group("/s3", "Object store admin", "Destructive bucket operations", middleware.RequireAccess("objects:write"))
	admin.DELETE("/delete/*key",
		[]fizz.OperationOption{fizz.Summary("Delete an object")},
		tonic.Handler(objects.DeleteObject, 200),
	)

	f.GET("/openapi.json", []fizz.OperationOption{}, f.OpenAPI(info, "json"))

	return f
}
