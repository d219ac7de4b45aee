package constants

const (
	APP_NAME       = "Blogicum"
	POSTS_PER_PAGE = 10

	MAX_TITLE_LENGTH    = 256
	MAX_USERNAME_LENGTH = 150
	MIN_PASSWORD_LENGTH = 8
	MAX_IMAGE_SIZE      = 5 << 20

	POSTS_IMAGES_PREFIX = "posts_images/"
)
