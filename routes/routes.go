package routes

import (
	"template-service/controllers"
	"template-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every template endpoint under the auth middleware.
func RegisterRoutes(
	r *gin.Engine,
	templateController *controllers.TemplateController,
	scenarioController *controllers.ScenarioController,
	overrideController *controllers.OverrideController,
	exportController *controllers.ExportController,
	exportJobHandler *controllers.ExportJobHandler,
	presignHandler *controllers.PresignedURLHandler,
) {
	templateRoutes := r.Group("/templates", middleware.AuthMiddleware())
	{
		templateRoutes.POST("", templateController.CreateTemplate)
		templateRoutes.GET("", templateController.ListTemplates)
		templateRoutes.GET("/presign-upload", presignHandler.GetPresignUpload)
		templateRoutes.GET("/:id", templateController.GetTemplate)
		templateRoutes.DELETE("/:id", templateController.DeleteTemplate)
		templateRoutes.GET("/:id/rows", templateController.GetRows)

		templateRoutes.POST("/:id/scenarios", scenarioController.CreateScenario)
		templateRoutes.GET("/:id/scenarios", scenarioController.ListScenarios)
		templateRoutes.DELETE("/:id/scenarios/:scenarioId", scenarioController.DeleteScenario)
		templateRoutes.DELETE("/:id/scenarios", scenarioController.RestoreProduct)

		templateRoutes.GET("/:id/overrides", overrideController.GetOverrides)
		templateRoutes.PUT("/:id/overrides", overrideController.UpsertOverride)
		templateRoutes.DELETE("/:id/overrides", overrideController.DeleteOverrides)
		templateRoutes.PUT("/:id/descriptions", overrideController.UpsertDescription)

		templateRoutes.GET("/:id/export", exportController.Export)
		templateRoutes.POST("/:id/export/jobs", exportJobHandler.CreateExportJob)
	}

	jobRoutes := r.Group("/export/jobs", middleware.AuthMiddleware())
	{
		jobRoutes.GET("/:id", exportJobHandler.GetExportJobStatus)
	}
}
