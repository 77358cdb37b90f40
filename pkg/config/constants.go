package config

const (
	EnvPrefix = "trailhop"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "TRAILHOP_APP_ENV"
	EnvPort     = "TRAILHOP_APP_PORT"
	EnvDBDSN    = "TRAILHOP_DB_DSN"
	EnvDBHost   = "TRAILHOP_DB_HOST"
	EnvDBUser   = "TRAILHOP_DB_USER"
	EnvDBName   = "TRAILHOP_DB_NAME"
	EnvRedisURL = "TRAILHOP_REDIS_URL"

	EnvStripeAPIKey = "TRAILHOP_STRIPE_API_KEY"

	EnvCheckoutSettingsURL = "TRAILHOP_CHECKOUT_SETTINGS_URL"
	EnvCheckoutCallbackURL = "TRAILHOP_CHECKOUT_CALLBACK_URL"
	EnvCheckoutReturnURL   = "TRAILHOP_CHECKOUT_RETURN_URL"
	EnvCheckoutSuccessURL  = "TRAILHOP_CHECKOUT_SUCCESS_URL"

	EnvGCPProjectID            = "TRAILHOP_GCP_PROJECT_ID"
	EnvPubSubNotificationTopic = "TRAILHOP_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub   = "TRAILHOP_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
