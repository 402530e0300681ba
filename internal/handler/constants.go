package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSignup is the signup route.
	RouteSignup = "/signup"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteMenu is the public menu route.
	RouteMenu = "/menu"
	// RouteMenuMeal is the public meal detail route pattern.
	RouteMenuMeal = RouteMenu + "/meal/{mealId}"
	// RouteMenuMealComment is the comment submission route pattern.
	RouteMenuMealComment = RouteMenuMeal + "/create-comment"
	// RouteProfile is the user profile route pattern.
	RouteProfile = "/profile/{userId}"
	// RouteMeals is the admin meal catalog route.
	RouteMeals = "/meals"
	// RouteMealsCreate is the admin meal creation route.
	RouteMealsCreate = RouteMeals + "/create"
	// RouteMealsID is the admin meal detail route pattern.
	RouteMealsID = RouteMeals + "/{mealId}"
	// RouteMealsIDEdit is the admin meal edit route pattern.
	RouteMealsIDEdit = RouteMealsID + "/edit"
	// RouteMealsIDDelete is the admin meal delete route pattern.
	RouteMealsIDDelete = RouteMealsID + "/delete"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness check route.
	RouteHealthLive = RouteHealth + "/live"
	// RouteHealthReady is the readiness check route.
	RouteHealthReady = RouteHealth + "/ready"
)

const (
	redirectMenu        = RouteMenu
	redirectMeals       = RouteMeals
	redirectMealsCreate = RouteMealsCreate
	redirectSignup      = RouteSignup
	redirectLogin       = RouteLogin
	redirectRoot        = RouteRoot

	redirectMenuMeal = RouteMenu + "/meal/%d"
	redirectMealsID  = RouteMeals + "/%d"
)

// User-facing messages. The signup and login wording is load-bearing:
// the generic login failure covers both unknown email and wrong password
// so the two cases cannot be told apart.
const (
	msgFieldsMandatory    = "All fields are mandatory. Please provide a username, email and password."
	msgPasswordTooShort   = "Your password must be a minimum of 8 characters."
	msgUsernameTaken      = "Username invalid. Please try a different username."
	msgEmailTaken         = "An account with this email already exists."
	msgInvalidCredentials = "Invalid email or password. Please try again."
	msgMealExists         = "This meal already exists in the database."
	msgMealFieldsRequired = "Name, ingredients and allergens are required."
	msgCommentRequired    = "Please write a comment before submitting."
	msgWelcome            = "Welcome to Sufra!"
	msgLoggedOut          = "You have been logged out."
)

// Form field names shared between templates and handlers.
const (
	// FormFieldCoverImage is the multipart field carrying the meal cover
	// image on create and edit.
	FormFieldCoverImage = "meal-cover-image"
	// FormFieldExistingImage carries the current image path through an
	// edit submission so it survives when no new file is chosen.
	FormFieldExistingImage = "existingImage"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
