package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"paperlib/internal/auth"
	"paperlib/internal/meta"
	"paperlib/internal/service"
)

const queryTypeLeaderboards = "leaderboards"

// ListPapers pages, searches or ranks papers.
//
// @Summary  List, search or rank papers
// @Tags     papers
// @Produce  json
// @Param    queryType     query string false "leaderboards switches to the three rankings"
// @Param    searchTerm    query string false "title prefix"
// @Param    orderByField  query string false "uploadDate | previewCount | downloadCount | title"
// @Param    order         query string false "asc | desc"
// @Param    limitNum      query int    false "page size, capped at 50"
// @Param    startAfterId  query string false "id of the last paper of the previous page"
// @Success  200 {object} listResponse
// @Failure  400 {object} errorPayload
// @Router   /papers [get]
func ListPapers(svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q listQuery
		if err := c.QueryParser(&q); err != nil {
			return badRequest("BAD_REQUEST", "malformed query")
		}
		q.Order = strings.ToLower(q.Order)
		if err := validate.Struct(q); err != nil {
			return validationError(err)
		}

		if q.QueryType == queryTypeLeaderboards {
			lb, err := svc.Leaderboards(c.UserContext())
			if err != nil {
				return err
			}
			return c.JSON(leaderboardsResponse{
				Recent:          toPaperList(lb.Recent),
				PopularPreview:  toPaperList(lb.PopularPreview),
				PopularDownload: toPaperList(lb.PopularDownload),
			})
		}

		res, err := svc.List(c.UserContext(), service.ListParams{
			SearchTerm:   q.SearchTerm,
			OrderBy:      q.OrderByField,
			Order:        q.Order,
			Limit:        q.limit(),
			StartAfterID: q.StartAfterID,
		})
		if err != nil {
			return err
		}
		return c.JSON(listResponse{Papers: toPaperList(res.Items), LastVisibleID: res.Cursor})
	}
}

// UploadPaper stores the multipart field "paper" and registers it.
//
// @Summary  Upload a paper
// @Tags     papers
// @Accept   multipart/form-data
// @Produce  json
// @Param    paper     formData file   true  "PDF file"
// @Param    title     formData string false "title, parsed from the file name when empty"
// @Param    authors   formData string false "comma separated authors"
// @Param    keywords  formData string false "comma separated keywords"
// @Success  200 {object} uploadResponse
// @Failure  400 {object} errorPayload
// @Router   /upload [post]
func UploadPaper(svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("paper")
		if err != nil {
			return badRequest("FILE_REQUIRED", "paper file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return badRequest("FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get(fiber.HeaderContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}

		p, err := svc.Upload(c.UserContext(), service.UploadInput{
			Reader:      f,
			FileName:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Title:       c.FormValue("title"),
			Authors:     meta.SplitAuthors(c.FormValue("authors")),
			Keywords:    meta.SplitKeywords(c.FormValue("keywords")),
		})
		if err != nil {
			return err
		}
		return c.JSON(uploadResponse{
			Message:    "文件上传成功",
			FileURL:    p.FileURL,
			UniquePath: p.FileName,
			ID:         p.ID,
		})
	}
}

// DeletePaper removes a paper and, optionally, its object. Administrators only.
//
// @Summary  Delete a paper
// @Tags     papers
// @Accept   json
// @Produce  json
// @Param    Authorization header string        true "Bearer <id token>"
// @Param    body          body   deleteRequest true "paper id and object key"
// @Success  200 {object} map[string]bool
// @Failure  400 {object} errorPayload
// @Failure  401 {object} errorPayload
// @Failure  403 {object} errorPayload
// @Router   /delete-paper [delete]
func DeletePaper(gate *auth.Gate, svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if gate == nil {
			return newAPIError(fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "delete is not configured")
		}
		id, err := gate.Authorize(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}

		var req deleteRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return badRequest("BAD_REQUEST", "malformed body")
			}
		}
		if err := validate.Struct(req); err != nil {
			return validationError(err)
		}

		if err := svc.Delete(c.UserContext(), req.ID, req.FileName); err != nil {
			return err
		}
		zerolog.Ctx(c.UserContext()).Info().
			Str("id", req.ID).
			Str("file_name", req.FileName).
			Str("by", id.Email).
			Msg("paper deleted")
		return c.JSON(fiber.Map{"ok": true})
	}
}

// GetSummary returns the stored summary, or the abstract when none was generated.
//
// @Summary  Stored summary
// @Tags     summaries
// @Produce  json
// @Param    id query string true "paper id"
// @Success  200 {object} summaryResponse
// @Failure  404 {object} errorPayload
// @Router   /get-summary [get]
func GetSummary(svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Summary(c.UserContext(), c.Query("id"))
		if err != nil {
			return err
		}
		return c.JSON(summaryResponse{Summary: s})
	}
}

// Summarize generates a summary of a stored PDF and, with id, saves it on the paper.
//
// @Summary  Generate a summary
// @Tags     summaries
// @Produce  json
// @Param    fileName query string true  "object key"
// @Param    id       query string false "paper id to store the summary on"
// @Success  200 {object} summaryResponse
// @Failure  400 {object} errorPayload
// @Failure  429 {object} errorPayload
// @Failure  502 {object} errorPayload
// @Router   /summarize [get]
func Summarize(svc service.PaperService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Summarize(c.UserContext(), c.Query("fileName"), c.Query("id"))
		if err != nil {
			return err
		}
		return c.JSON(summaryResponse{Summary: s})
	}
}
