// Package server exposes banner rendering over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/setanarut/bannergen"
	"github.com/setanarut/bannergen/background"
	"github.com/setanarut/bannergen/compose"
	"github.com/setanarut/bannergen/utils"
	"go.uber.org/zap"
)

// maxUpload bounds the size of a single uploaded image.
const maxUpload = 32 << 20

type Server struct {
	log  *zap.Logger
	opts bannergen.Options
}

func New(log *zap.Logger, opts bannergen.Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{log: log, opts: opts}
}

// Engine returns a gin engine with every route registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = maxUpload
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/styles", s.styles)
		api.POST("/banner", s.banner)
	}
}

func (s *Server) Run(addr string) error {
	s.log.Info("starting server", zap.String("addr", addr))
	if err := s.Engine().Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) styles(c *gin.Context) {
	names := make([]string, 0, len(background.Styles()))
	for _, st := range background.Styles() {
		names = append(names, st.String())
	}
	c.JSON(http.StatusOK, gin.H{"styles": names})
}

// uploads serves multipart files to the builder by field name.
type uploads map[string][]byte

func (u uploads) Open(_ context.Context, uri string) (io.ReadCloser, error) {
	data, ok := u[uri]
	if !ok {
		return nil, fmt.Errorf("%s: %w", uri, os.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// add stores fh under field plus the upload's extension, which picks the
// decoder.
func (u uploads) add(field string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUpload))
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := field + ext
	u[name] = data
	return name, nil
}

// formInt reads a non-negative integer field of at most limit. An absent
// field is 0.
func formInt(c *gin.Context, key string, limit int) (int, error) {
	v := c.PostForm(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	if n > limit {
		return 0, fmt.Errorf("%s %d exceeds %d", key, n, limit)
	}
	return n, nil
}

func (s *Server) banner(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image: " + err.Error()})
		return
	}
	files := uploads{}
	first, err := files.add("image", fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sources := []string{first}
	if fh2, err := c.FormFile("image2"); err == nil {
		second, err := files.add("image2", fh2)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sources = append(sources, second)
	}

	limit := s.opts.CanvasLimit()
	width, err := formInt(c, "width", limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	height, err := formInt(c, "height", limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := bannergen.Request{
		Sources:  sources,
		Caption:  c.PostForm("caption"),
		Subtitle: c.PostForm("subtitle"),
		Width:    width,
		Height:   height,
		Style:    c.PostForm("style"),
		Shape:    compose.ParseShape(c.PostForm("shape")),
	}
	if v := c.PostForm("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid seed %q", v)})
			return
		}
		req.Seed = &seed
	}
	format := utils.ParseFormat(c.PostForm("format"))

	b := bannergen.New(
		bannergen.WithOptions(s.opts),
		bannergen.WithLogger(s.log),
		bannergen.WithOpener(files),
	)
	img, err := b.Build(c.Request.Context(), req)
	if err != nil {
		var de *utils.DecodeError
		if errors.As(err, &de) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("render failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	data, err := utils.EncodeBytes(img, format)
	if err != nil {
		s.log.Error("encode failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, format.ContentType(), data)
}
