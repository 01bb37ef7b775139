package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/loopfz/gadgeto/tonic"

	api "github.com/s10-intake/intake-api/pkg/intake_api"
	"github.com/s10-intake/intake-api/pkg/intake_api/database"
	"github.com/s10-intake/intake-api/pkg/intake_api/formsg"
	"github.com/s10-intake/intake-api/pkg/intake_api/handler"
	problem "github.com/s10-intake/intake-api/pkg/intake_api/helpers/problem"
	"github.com/s10-intake/intake-api/pkg/intake_api/repositories"
	"github.com/s10-intake/intake-api/pkg/intake_api/services"
	"github.com/s10-intake/intake-api/pkg/intake_api/storage"
	"github.com/s10-intake/intake-api/pkg/jobs"
)

func invalidParamsFromBinding(err error) []problem.InvalidParam {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []problem.InvalidParam{{Name: "body", Reason: err.Error()}}
	}

	out := make([]problem.InvalidParam, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, problem.InvalidParam{
			Name:   fe.Field(),
			Reason: humanReason(fe),
		})
	}
	return out
}

func humanReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	default:
		return fe.Error()
	}
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

func init() {
	tonic.SetErrorHook(func(c *gin.Context, err error) (int, interface{}) {
		// bind/validate errors → 400 with invalidParams
		var be tonic.BindError
		if errors.As(err, &be) || isValidationErr(err) {
			apiErr := problem.NewBadRequest("body", "Invalid input", invalidParamsFromBinding(err)...)
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		// our own APIError → pass-through
		if apiErr, ok := err.(problem.APIError); ok {
			c.Header("Content-Type", "application/problem+json")
			return apiErr.Status, apiErr
		}

		// everything else → 500
		internal := problem.NewInternalServerError(err.Error())
		c.Header("Content-Type", "application/problem+json")
		return internal.Status, internal
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	dbcon := "postgres://" +
		os.Getenv("DB_USERNAME") + ":" +
		os.Getenv("DB_PASSWORD") + "@" +
		os.Getenv("DB_HOSTNAME") + "/" +
		os.Getenv("DB_DBNAME")
	db, err := database.Connect(dbcon)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	store, err := storage.NewS3Store(context.Background(), storage.S3Config{
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Region:    getenv("AWS_REGION", "ap-southeast-1"),
		Bucket:    os.Getenv("AWS_BUCKET_NAME"),
		Endpoint:  os.Getenv("AWS_ENDPOINT_URL"),
	})
	if err != nil {
		log.Fatalf("failed to create S3 store: %v", err)
	}

	// The form secret key has no default on purpose.
	secretKey := os.Getenv("FORMSG_SECRET_KEY")
	if secretKey == "" {
		log.Fatal("FORMSG_SECRET_KEY is required")
	}
	decrypter, err := formsg.NewBoxDecrypter(secretKey)
	if err != nil {
		log.Fatalf("invalid FORMSG_SECRET_KEY: %v", err)
	}

	staging := storage.NewStagingWriter(getenv("STAGING_DIR", "/tmp/s10-template"))

	templateRepo := repositories.NewTemplateRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	submissionRepo := repositories.NewSubmissionRepository(db)

	templateService := services.NewTemplateService(templateRepo, packageRepo, store, staging)
	submissionService := services.NewSubmissionService(submissionRepo, decrypter, store)

	intakeController := handler.NewIntakeController(templateService, submissionService)
	objectsController := handler.NewObjectsController(store)

	jobs.ScheduleStagingSweep(context.Background(), staging, 7*24*time.Hour)

	router := api.NewRouter("1.0.0", intakeController, objectsController)

	port := getenv("PORT", "8000")
	log.Printf("Server is running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
