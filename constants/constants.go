package constants

const (
	ENV_LOCAL = "local"
	ENV_DEV   = "dev"
	ENV_PROD  = "prod"
)

const (
	AppName    = "finsage"
	AppVersion = "0.2.0"
)

// FinSageCryptoURL is where crypto questions are redirected.
const FinSageCryptoURL = "https://aifinsage.web.app/"
