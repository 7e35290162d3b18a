package main

import (
	"fmt"
	"net/http"

	"github.com/clockwise-hr/attendance-engine-go/internal/config"
	appHTTP "github.com/clockwise-hr/attendance-engine-go/internal/handler/http"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/clock"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/cron"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/database"
	"github.com/clockwise-hr/attendance-engine-go/internal/pkg/jwt"
	"github.com/clockwise-hr/attendance-engine-go/internal/repository/postgresql"
	attendanceService "github.com/clockwise-hr/attendance-engine-go/internal/service/attendance"
	calendarService "github.com/clockwise-hr/attendance-engine-go/internal/service/calendar"
	correctionService "github.com/clockwise-hr/attendance-engine-go/internal/service/correction"
	exceptionService "github.com/clockwise-hr/attendance-engine-go/internal/service/exception"
	overtimeService "github.com/clockwise-hr/attendance-engine-go/internal/service/overtime"
	reportService "github.com/clockwise-hr/attendance-engine-go/internal/service/report"
	shiftService "github.com/clockwise-hr/attendance-engine-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	shiftTypeRepo := postgresql.NewShiftTypeRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	overtimeRuleRepo := postgresql.NewOvertimeRuleRepository(db)
	exceptionRepo := postgresql.NewTimeExceptionRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiration)
	clk := clock.New()

	shiftSvc := shiftService.NewShiftService(db, shiftTypeRepo, assignmentRepo, employeeRepo, clk)
	overtimeSvc := overtimeService.NewOvertimeService(
		overtimeRuleRepo,
		attendanceRepo,
		employeeRepo,
		shiftTypeRepo,
		holidayRepo,
		exceptionRepo,
		cfg.Engine,
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		db,
		attendanceRepo,
		employeeRepo,
		shiftSvc,
		overtimeSvc,
		exceptionRepo,
		correctionRepo,
		clk,
		cfg.Engine,
	)
	correctionSvc := correctionService.NewCorrectionService(db, correctionRepo, attendanceRepo, overtimeSvc)
	exceptionSvc := exceptionService.NewExceptionService(exceptionRepo, employeeRepo, attendanceRepo, overtimeSvc, clk, cfg.Engine)
	calendarSvc := calendarService.NewCalendarService(holidayRepo)
	reportSvc := reportService.NewReportService(attendanceRepo, employeeRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, correctionSvc)
	shiftHandler := appHTTP.NewShiftHandler(shiftSvc)
	overtimeHandler := appHTTP.NewOvertimeHandler(overtimeSvc)
	exceptionHandler := appHTTP.NewExceptionHandler(exceptionSvc)
	calendarHandler := appHTTP.NewCalendarHandler(calendarSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, cfg.Engine.SweepInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		cfg.App.Env,
		attendanceHandler,
		shiftHandler,
		overtimeHandler,
		exceptionHandler,
		calendarHandler,
		reportHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
