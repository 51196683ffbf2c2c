package routes

import (
	"github.com/Dosada05/club-system/handlers"
	"github.com/Dosada05/club-system/middleware"
	"github.com/Dosada05/club-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	authHandler *handlers.AuthHandler,
	memberHandler *handlers.MemberHandler,
	paymentHandler *handlers.PaymentHandler,
	attendanceHandler *handlers.AttendanceHandler,
	equipmentHandler *handlers.EquipmentHandler,
	reminderHandler *handlers.ReminderHandler,
	communicationHandler *handlers.CommunicationHandler,
	userHandler *handlers.UserHandler,
	backupHandler *handlers.BackupHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", authHandler.Login)

	router.Get("/ws/{room}", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.With(auth.RequirePermission(models.PermViewDashboard)).
			Get("/dashboard", dashboardHandler.GetDashboard)

		r.Route("/members", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermViewMembers)).Get("/", memberHandler.GetAllMembers)
			r.With(auth.RequirePermission(models.PermViewMembers)).Get("/{memberID}", memberHandler.GetMemberByID)
			r.With(auth.RequirePermission(models.PermViewAttendance)).Get("/{memberID}/attendance", attendanceHandler.GetMemberAttendanceRate)
			r.With(auth.RequirePermission(models.PermEditMembers)).Post("/", memberHandler.CreateMember)
			r.With(auth.RequirePermission(models.PermEditMembers)).Put("/{memberID}", memberHandler.UpdateMember)
			r.With(auth.RequirePermission(models.PermDeleteMembers)).Delete("/{memberID}", memberHandler.DeleteMember)
		})

		r.Route("/payments", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermViewPayments)).Get("/", paymentHandler.GetAllPayments)
			r.With(auth.RequirePermission(models.PermViewPayments)).Get("/overdue", paymentHandler.GetOverduePayments)
			r.With(auth.RequirePermission(models.PermViewPayments)).Get("/stats", paymentHandler.GetFinancialStats)
			r.With(auth.RequirePermission(models.PermViewPayments)).Get("/report", paymentHandler.GetMonthlyReport)
			r.With(auth.RequirePermission(models.PermViewPayments)).Get("/{paymentID}", paymentHandler.GetPaymentByID)
			r.With(auth.RequirePermission(models.PermManagePayments)).Post("/", paymentHandler.AddPayment)
			r.With(auth.RequirePermission(models.PermManagePayments)).Post("/generate", paymentHandler.GenerateMonthlyPayments)
			r.With(auth.RequirePermission(models.PermManagePayments)).Post("/{paymentID}/pay", paymentHandler.MarkPaid)
			r.With(auth.RequirePermission(models.PermManagePayments)).Post("/{paymentID}/cancel", paymentHandler.CancelPayment)
			r.With(auth.RequirePermission(models.PermManagePayments)).Post("/{paymentID}/reactivate", paymentHandler.ReactivatePayment)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermViewAttendance)).Get("/", attendanceHandler.GetAllSessions)
			r.With(auth.RequirePermission(models.PermViewAttendance)).Get("/{sessionID}", attendanceHandler.GetSessionByID)
			r.With(auth.RequirePermission(models.PermViewAttendance)).Get("/{sessionID}/stats", attendanceHandler.GetSessionStats)
			r.With(auth.RequirePermission(models.PermManageAttendance)).Post("/", attendanceHandler.CreateSession)
			r.With(auth.RequirePermission(models.PermManageAttendance)).Put("/{sessionID}", attendanceHandler.UpdateSession)
			r.With(auth.RequirePermission(models.PermManageAttendance)).Delete("/{sessionID}", attendanceHandler.DeleteSession)
			r.With(auth.RequirePermission(models.PermManageAttendance)).Post("/{sessionID}/attendance", attendanceHandler.MarkAttendance)
		})

		r.Route("/equipment", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermViewDashboard)).Get("/", equipmentHandler.GetAllEquipment)
			r.With(auth.RequirePermission(models.PermViewDashboard)).Get("/stats", equipmentHandler.GetEquipmentStats)
			r.With(auth.RequirePermission(models.PermViewDashboard)).Get("/maintenance", equipmentHandler.GetMaintenanceDue)
			r.With(auth.RequirePermission(models.PermViewDashboard)).Get("/{equipmentID}", equipmentHandler.GetEquipmentByID)
			r.With(auth.RequirePermission(models.PermManageEquipment)).Post("/", equipmentHandler.AddEquipment)
			r.With(auth.RequirePermission(models.PermManageEquipment)).Put("/{equipmentID}", equipmentHandler.UpdateEquipment)
			r.With(auth.RequirePermission(models.PermManageEquipment)).Delete("/{equipmentID}", equipmentHandler.DeleteEquipment)
			r.With(auth.RequirePermission(models.PermManageEquipment)).Post("/{equipmentID}/maintenance", equipmentHandler.MarkMaintenanceDone)
		})

		r.Route("/loans", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermViewDashboard)).Get("/", equipmentHandler.GetAllLoans)
			r.With(auth.RequirePermission(models.PermViewDashboard)).Get("/overdue", equipmentHandler.GetOverdueLoans)
			r.With(auth.RequirePermission(models.PermManageEquipment)).Post("/", equipmentHandler.CreateLoan)
			r.With(auth.RequirePermission(models.PermManageEquipment)).Post("/{loanID}/return", equipmentHandler.ReturnLoan)
		})

		r.Route("/reminders", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermViewNotifications)).Get("/", reminderHandler.GetReminders)
			r.With(auth.RequirePermission(models.PermManageNotifications)).Post("/check", reminderHandler.RunOverdueCheck)
		})

		r.Route("/messages", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermViewCommunication)).Get("/", communicationHandler.GetMessages)
			r.With(auth.RequirePermission(models.PermViewCommunication)).Get("/{messageID}", communicationHandler.GetMessageByID)
			r.With(auth.RequirePermission(models.PermViewCommunication)).Get("/unread/{memberID}", communicationHandler.GetUnreadCount)
			r.With(auth.RequirePermission(models.PermManageCommunication)).Post("/", communicationHandler.SendMessage)
			r.With(auth.RequirePermission(models.PermViewCommunication)).Post("/{messageID}/read", communicationHandler.MarkRead)
			r.With(auth.RequirePermission(models.PermViewCommunication)).Post("/{messageID}/acknowledge", communicationHandler.MarkAcknowledged)
			r.With(auth.RequirePermission(models.PermManageCommunication)).Delete("/{messageID}", communicationHandler.DeleteMessage)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermManageUsers)).Get("/", userHandler.GetAllUsers)
			r.With(auth.RequirePermission(models.PermManageUsers)).Get("/{userID}", userHandler.GetUserByID)
			r.With(auth.RequirePermission(models.PermManageUsers)).Post("/", userHandler.CreateUser)
			r.With(auth.RequirePermission(models.PermManageUsers)).Put("/{userID}/role", userHandler.UpdateRole)
			r.With(auth.RequirePermission(models.PermManageUsers)).Put("/{userID}/permissions", userHandler.SetPermission)
			r.With(auth.RequirePermission(models.PermManageUsers)).Put("/{userID}/active", userHandler.SetActive)
			r.Put("/{userID}/password", userHandler.ChangePassword)
		})

		r.Route("/backups", func(r chi.Router) {
			r.With(auth.RequirePermission(models.PermManageBackup)).Get("/", backupHandler.GetBackupHistory)
			r.With(auth.RequirePermission(models.PermManageBackup)).Post("/", backupHandler.CreateBackup)
			r.With(auth.RequirePermission(models.PermManageBackup)).Post("/{backupID}/restore", backupHandler.RestoreBackup)
			r.With(auth.RequirePermission(models.PermManageBackup)).Get("/settings", backupHandler.GetSyncSettings)
			r.With(auth.RequirePermission(models.PermManageBackup)).Put("/settings", backupHandler.UpdateSyncSettings)
			r.With(auth.RequirePermission(models.PermExportData)).Get("/export/{collection}", backupHandler.ExportCollection)
			r.With(auth.RequirePermission(models.PermManageBackup)).Post("/import/{collection}", backupHandler.ImportCollection)
		})
	})
}
