package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/quizforge-backend/controllers"
	"github.com/vnkhanh/quizforge-backend/middleware"
	"github.com/vnkhanh/quizforge-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
	}

	user := api.Group("")
	{
		user.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		user.PUT("/auth/change-password", controllers.ChangePassword)
	}

	admin := api.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db), middleware.RequireRoles("admin"))
		admin.POST("/lecturers", controllers.AdminCreateLecturer)
	}

	instructor := api.Group("")
	{
		instructor.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db), middleware.RequireRoles("admin", "teacher"))

		// Quản lý thư mục
		instructor.POST("/folders", controllers.CreateFolder)
		instructor.GET("/folders", controllers.GetFolders)
		instructor.GET("/folders/:id", controllers.GetFolderDetail)
		instructor.GET("/folders/:id/stats", controllers.GetFolderStats)
		instructor.PUT("/folders/:id", controllers.UpdateFolder)
		instructor.DELETE("/folders/:id", controllers.DeleteFolder)

		// Quản lý tài liệu
		instructor.POST("/materials/upload", controllers.UploadMaterial)
		instructor.POST("/materials/url", controllers.CreateURLMaterial)
		instructor.POST("/materials/text", controllers.CreateTextMaterial)
		instructor.GET("/materials", controllers.GetMaterials)
		instructor.GET("/materials/:id", controllers.GetMaterialDetail)
		instructor.POST("/materials/:id/reprocess", controllers.ReprocessMaterial)
		instructor.DELETE("/materials/:id", controllers.DeleteMaterial)

		// Quản lý đề trắc nghiệm
		instructor.POST("/quizzes", controllers.CreateQuiz)
		instructor.GET("/quizzes", controllers.GetQuizzes)
		instructor.GET("/quizzes/:id", controllers.GetQuizDetail)
		instructor.PUT("/quizzes/:id", controllers.UpdateQuizSettings)
		instructor.DELETE("/quizzes/:id", controllers.DeleteQuiz)
		instructor.PUT("/quizzes/:id/materials", controllers.AssignMaterialsToQuiz)

		// Mục tiêu học tập
		instructor.POST("/quizzes/:id/objectives/generate", controllers.GenerateObjectives)
		instructor.POST("/quizzes/:id/objectives", controllers.CreateObjective)
		instructor.PUT("/quizzes/:id/objectives/reorder", controllers.ReorderObjectives)
		instructor.POST("/objectives/classify", controllers.ClassifyText)
		instructor.PUT("/objectives/:id", controllers.EditObjectiveText)
		instructor.DELETE("/objectives/:id", controllers.DeleteObjective)

		// Kế hoạch tạo câu hỏi
		instructor.POST("/quizzes/:id/plans", controllers.GeneratePlan)
		instructor.PUT("/plans/:id/breakdown", controllers.UpdatePlanBreakdown)
		instructor.POST("/plans/:id/approve", controllers.ApprovePlan)
		instructor.DELETE("/plans/:id", controllers.DeletePlan)

		// Câu hỏi
		instructor.POST("/plans/:id/generate-questions", controllers.GenerateQuestionsFromPlan)
		instructor.POST("/quizzes/:id/questions", controllers.CreateQuestion)
		instructor.PUT("/quizzes/:id/questions/reorder", controllers.ReorderQuestions)
		instructor.PUT("/questions/:id", controllers.EditQuestion)
		instructor.PATCH("/questions/:id/review", controllers.SetQuestionReviewStatus)
		instructor.DELETE("/questions/:id", controllers.DeleteQuestion)

		// Xuất đề
		instructor.POST("/quizzes/:id/exports", controllers.RecordExport)
		instructor.GET("/quizzes/:id/exports", controllers.GetQuizExports)
		instructor.GET("/exports/:id/download", controllers.DownloadExport)
	}

	r.GET("/ws/material/:id", ws.HandleMaterialWebSocket)
	r.GET("/ws/status", ws.HandleGlobalWebSocket)

	return r
}
