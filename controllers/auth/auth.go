package authController

import (
	"context"
	"errors"
	"log"
	"time"

	"learnhub/config"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"
	"learnhub/validators"
	authValidator "learnhub/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	otpValidity     = 5 * time.Minute
	maxLoginFailure = 3
	lockoutPeriod   = time.Minute
	failureWindow   = 15 * time.Minute
)

// Mailer is the slice of the email service the auth flow needs
type Mailer interface {
	SendWelcomeEmail(email, name string)
}

type Handler struct {
	db       *gorm.DB
	jwtKey   string
	salt     int
	sms      utils.SMSSender
	mailer   Mailer
	throttle utils.OTPThrottle
	now      func() time.Time
}

func New(db *gorm.DB, cfg *config.Config, sms utils.SMSSender, mailer Mailer, throttle utils.OTPThrottle) *Handler {
	return &Handler{
		db:       db,
		jwtKey:   cfg.JWTKey,
		salt:     cfg.SaltRound,
		sms:      sms,
		mailer:   mailer,
		throttle: throttle,
		now:      time.Now,
	}
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	reqData := validators.Request[authValidator.SignupRequest](c)
	db := h.db.WithContext(c.UserContext())

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Check if mobile already exists
	if err := db.Where("mobile = ?", reqData.Mobile).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Mobile number is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), h.salt)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Mobile:   reqData.Mobile,
		Role:     reqData.Role,
		Password: string(hashedPassword),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newUser).Error; err != nil {
			return err
		}
		return SeedPermissions(tx, newUser.Role, newUser.ID)
	})
	if err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	if h.mailer != nil {
		h.mailer.SendWelcomeEmail(newUser.Email, newUser.Name)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

// SeedPermissions seeds default permissions for a given role and user ID
func SeedPermissions(db *gorm.DB, role string, userID uint) error {
	var permissionRecords []models.Permission
	for _, p := range models.DefaultPermissions(role) {
		permissionRecords = append(permissionRecords, models.Permission{
			UserID:     userID,
			Role:       role,
			Permission: p,
		})
	}
	return db.Create(&permissionRecords).Error
}

func (h *Handler) Login(c *fiber.Ctx) error {
	reqData := validators.Request[authValidator.LoginRequest](c)
	db := h.db.WithContext(c.UserContext())

	var user models.User
	var result *gorm.DB

	// Retrieve user by email or mobile
	if reqData.Email != "" {
		result = db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user)
	} else {
		result = db.Where("mobile = ? AND is_deleted = ?", reqData.Mobile, false).First(&user)
	}
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := h.now()

	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failureWindow {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts >= maxLoginFailure {
			unblockTime := now.Add(lockoutPeriod)
			user.IsBlocked = true
			user.BlockedUntil = &unblockTime
			user.FailedLoginAttempts = 0
		}
		if err := db.Save(&user).Error; err != nil {
			log.Printf("Error recording failed login: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Wrong Password", nil)
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.IsBlocked = false
	user.BlockedUntil = nil
	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}
	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Timestamp: now,
	}
	log.Printf("User %d logged in from IP: %s", user.ID, loginTracking.IPAddress)
	if err := db.Create(&loginTracking).Error; err != nil {
		log.Printf("Error saving login tracking details: %v", err)
	}

	token, err := middleware.GenerateJWT(h.jwtKey, user.ID, user.Name, user.Role, user.Email, user.Mobile)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	user.ProfileImage = ""
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (h *Handler) LoginHistoryList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData := validators.Request[authValidator.HistoryQuery](c)
	page, limit := reqData.Page, reqData.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	db := h.db.WithContext(c.UserContext())
	scope := db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", userId, false)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	var loginTracking []models.LoginTracking
	if err := db.Where("user_id = ? AND is_deleted = ?", userId, false).
		Order("timestamp DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&loginTracking).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"loginTracking": loginTracking,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

func (h *Handler) SendOTP(c *fiber.Ctx) error {
	reqData := validators.Request[authValidator.SendOTPRequest](c)
	ctx := c.UserContext()
	db := h.db.WithContext(ctx)

	var user models.User
	if err := db.Where("mobile = ? AND is_deleted = ?", reqData.Mobile, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid mobile!", nil)
	}
	if user.IsMobileVerified {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Mobile already verified!", nil)
	}

	if !h.allow(ctx, reqData.Mobile) {
		return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Please wait before requesting another OTP!", nil)
	}

	otpRecord := models.OTP{
		UserID:      user.ID,
		Mobile:      reqData.Mobile,
		Code:        utils.GenerateOTP(),
		ExpiresAt:   h.now().Add(otpValidity),
		Description: "mobile-verification",
	}
	if err := db.Create(&otpRecord).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Create OTP!", nil)
	}

	if err := h.sms.SendOTP(ctx, reqData.Mobile, otpRecord.Code); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send OTP to mobile!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP sent successfully.", nil)
}

// allow fails open when the throttle store is unreachable
func (h *Handler) allow(ctx context.Context, mobile string) bool {
	if h.throttle == nil {
		return true
	}
	ok, err := h.throttle.Allow(ctx, mobile)
	if err != nil {
		log.Printf("[SMS] throttle unavailable: %v", err)
		return true
	}
	return ok
}

func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	reqData := validators.Request[authValidator.VerifyOTPRequest](c)
	db := h.db.WithContext(c.UserContext())

	var user models.User
	if err := db.Where("mobile = ? AND is_deleted = ?", reqData.Mobile, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var otpRecord models.OTP
	err := db.Where("mobile = ? AND code = ? AND is_used = ? AND is_deleted = ?", reqData.Mobile, reqData.Code, false, false).
		Order("id DESC").
		First(&otpRecord).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error loading OTP: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid OTP or OTP expired!", nil)
	}

	if otpRecord.ExpiresAt.Before(h.now()) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "OTP has expired!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&otpRecord).Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Model(&user).Update("is_mobile_verified", true).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user verification status!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "OTP verified successfully!", nil)
}
