package controller

import (
	"cactus_village_backend/internal/config"
	"cactus_village_backend/internal/service"
	"cactus_village_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

type AuthController struct {
	MemberService *service.MemberService
	Cfg           *config.Hot
}

func NewAuthController(memberService *service.MemberService, cfg *config.Hot) *AuthController {
	return &AuthController{
		MemberService: memberService,
		Cfg:           cfg,
	}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=2,max=20"`
	Password string `json:"password" binding:"required,min=8"`
}

func (c *AuthController) Signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	member, err := c.MemberService.Signup(req.Email, req.Username, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": member.ID})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies the credentials, attaches the access/refresh token cookies
// and returns the member summary.
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	info, accessToken, refreshID, err := c.MemberService.Login(req.Email, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.setTokenCookies(ctx, accessToken, refreshID)
	util.Success(ctx, info)
}

func (c *AuthController) Logout(ctx *gin.Context) {
	refreshID, _ := ctx.Cookie(refreshCookie)
	if err := c.MemberService.Logout(refreshID); err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.clearTokenCookies(ctx)
	util.Success(ctx, nil)
}

// Reissue exchanges the refresh cookie for a fresh access cookie.
func (c *AuthController) Reissue(ctx *gin.Context) {
	refreshID, _ := ctx.Cookie(refreshCookie)
	accessToken, err := c.MemberService.Reissue(refreshID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	cfg := c.Cfg.Load()
	ctx.SetCookie(accessCookie, accessToken, int(cfg.JWT.AccessExpire.Seconds()), "/", "", cfg.Server.Mode == "release", true)
	util.Success(ctx, nil)
}

type RecoveryRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
}

func (c *AuthController) Recovery(ctx *gin.Context) {
	var req RecoveryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.MemberService.RecoverPassword(req.Email, req.Username); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

func (c *AuthController) GetMemberInfo(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	member, err := c.MemberService.FindMember(claims.MemberID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	info, err := c.MemberService.MemberInfo(member)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, info)
}

type EditRequest struct {
	Username    string `json:"username" binding:"required,min=2,max=20"`
	PrePassword string `json:"prePassword"`
	NewPassword string `json:"newPassword"`
}

func (c *AuthController) EditMember(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EditRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	member, err := c.MemberService.Edit(claims.MemberID, req.Username, req.PrePassword, req.NewPassword)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"username": member.Username})
}

func (c *AuthController) DeleteMember(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	refreshID, _ := ctx.Cookie(refreshCookie)
	if err := c.MemberService.Delete(claims.MemberID, refreshID); err != nil {
		util.HandleError(ctx, err)
		return
	}

	c.clearTokenCookies(ctx)
	util.Success(ctx, nil)
}

func (c *AuthController) setTokenCookies(ctx *gin.Context, accessToken, refreshID string) {
	cfg := c.Cfg.Load()
	secure := cfg.Server.Mode == "release"
	ctx.SetCookie(accessCookie, accessToken, int(cfg.JWT.AccessExpire.Seconds()), "/", "", secure, true)
	ctx.SetCookie(refreshCookie, refreshID, int(cfg.JWT.RefreshExpire.Seconds()), "/", "", secure, true)
}

func (c *AuthController) clearTokenCookies(ctx *gin.Context) {
	secure := c.Cfg.Load().Server.Mode == "release"
	ctx.SetCookie(accessCookie, "", -1, "/", "", secure, true)
	ctx.SetCookie(refreshCookie, "", -1, "/", "", secure, true)
}
