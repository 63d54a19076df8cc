package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Registration Routes
	RouteRegister        = "/register"
	RouteRegisterType    = "/register/type"
	RouteRegisterInfo    = "/register/info"
	RouteRegisterAddress = "/register/address"
	RouteRegisterBack    = "/register/back"
	RouteRegisterSubmit  = "/register/submit"

	// Collection Routes
	RoutePoints             = "/points"
	RouteSchedule           = "/schedule"
	RouteSchedules          = "/schedules"
	RouteScheduleCollected  = "/schedules/{id}/collected"
	routeScheduleCollectedF = "/schedules/%s/collected"

	// Operational Routes
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)
