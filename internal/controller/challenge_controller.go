package controller

import (
	"cactus_village_backend/internal/service"
	"cactus_village_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
}

func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{ChallengeService: challengeService}
}

type EnrollRequest struct {
	TargetDate int     `json:"targetDate" binding:"required,min=1,max=366"`
	TargetTime *string `json:"targetTime"`
}

// Enroll starts a challenge of the kind given by the "type" query parameter.
func (c *ChallengeController) Enroll(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.Enroll(claims.MemberID, ctx.Query("type"), req.TargetDate, req.TargetTime)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"challengeType": challenge.ChallengeType})
}

func (c *ChallengeController) Delete(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ChallengeService.Delete(claims.MemberID); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

type WriteHistoryRequest struct {
	Contents string  `json:"contents" binding:"required"`
	Time     *string `json:"time"`
}

func (c *ChallengeController) WriteHistory(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req WriteHistoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	info, err := c.ChallengeService.WriteHistory(claims.MemberID, req.Contents, req.Time)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, info)
}

// GetRecords returns the active-challenge record when the "active" query
// parameter is present, otherwise the aggregate over finished challenges.
func (c *ChallengeController) GetRecords(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if _, active := ctx.GetQuery("active"); active {
		record, err := c.ChallengeService.ActiveRecord(claims.MemberID)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		util.Success(ctx, record)
		return
	}

	records, err := c.ChallengeService.AllRecords(claims.MemberID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, records)
}

func (c *ChallengeController) GetMessage(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	message, err := c.ChallengeService.Message(claims.MemberID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": message})
}

func (c *ChallengeController) GetRanking(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	ranking, err := c.ChallengeService.Ranking(claims.MemberID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, ranking)
}

func (c *ChallengeController) SetNotified(ctx *gin.Context) {
	claims := util.GetMemberFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ChallengeService.SetNotified(claims.MemberID); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
