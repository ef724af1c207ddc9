package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"paperlib/internal/proxy"
)

const defaultUploadType = "application/octet-stream"

// GenerateUploadURL issues a signed PUT (default) or GET URL for an object key.
//
// @Summary  Signed upload or download URL
// @Tags     files
// @Produce  json
// @Param    name        query string true  "object key"
// @Param    method      query string false "GET | PUT"
// @Param    type        query string false "content type bound into a PUT signature"
// @Param    disposition query string false "inline | attachment, GET only"
// @Success  200 {object} signResponse
// @Failure  400 {object} errorPayload
// @Router   /generate-upload-url [get]
func GenerateUploadURL(signer *proxy.Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q signQuery
		if err := c.QueryParser(&q); err != nil {
			return badRequest("BAD_REQUEST", "malformed query")
		}
		if err := validate.Struct(q); err != nil {
			return validationError(err)
		}
		key, err := proxy.CleanKey(q.Name)
		if err != nil {
			return err
		}

		if strings.EqualFold(q.Method, http.MethodGet) {
			signed, err := signer.SignGet(c.UserContext(), key, q.Disposition)
			if err != nil {
				return fmt.Errorf("sign get %s: %w", key, err)
			}
			return c.JSON(signResponse{UploadURL: signed.URL})
		}

		contentType := q.Type
		if contentType == "" {
			contentType = defaultUploadType
		}
		signed, err := signer.SignPut(c.UserContext(), key, contentType)
		if err != nil {
			return fmt.Errorf("sign put %s: %w", key, err)
		}
		return c.JSON(signResponse{UploadURL: signed.URL, FileURL: signer.PublicURL(key)})
	}
}

// PDFProxy serves an object through a signed URL, either by redirect or by
// streaming it back with Range support.
//
// @Summary  Preview or download a paper
// @Tags     files
// @Produce  application/pdf
// @Param    name        query  string true  "object key or object URL"
// @Param    disposition query  string false "inline | attachment"
// @Param    Range       header string false "byte range, stream mode only"
// @Success  200
// @Success  206
// @Success  302
// @Failure  404 {object} errorPayload
// @Failure  502 {object} errorPayload
// @Router   /pdf-proxy [get]
func PDFProxy(resolver *proxy.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q proxyQuery
		if err := c.QueryParser(&q); err != nil {
			return badRequest("BAD_REQUEST", "malformed query")
		}
		if err := validate.Struct(q); err != nil {
			return validationError(err)
		}

		res, err := resolver.Resolve(c.UserContext(), q.Name, q.Disposition, c.Get(fiber.HeaderRange))
		if err != nil {
			return err
		}
		for name, values := range res.Header {
			if name == fiber.HeaderContentLength || len(values) == 0 {
				continue
			}
			c.Set(name, values[0])
		}

		if res.Location != "" {
			return c.Redirect(res.Location, res.Status)
		}

		size := -1
		if n, err := strconv.Atoi(res.Header.Get(fiber.HeaderContentLength)); err == nil {
			size = n
		}
		c.Status(res.Status)
		// fasthttp closes the body once it has been written out
		c.Context().SetBodyStream(res.Body, size)
		return nil
	}
}
