/*
 * Copyright (C) 2025-2026, Caesarion Authors. All rights reserved.
 * See LICENSE for license information.
 */

package sandbox_handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/yeti-teti/Caesarion/pkg/config"
	caeserrors "github.com/yeti-teti/Caesarion/pkg/errors"
)

func (h *Handler) UploadFile(c *gin.Context) {
	handle(c, h.uploadFile)
}

func (h *Handler) ListFiles(c *gin.Context) {
	handle(c, h.listFiles)
}

func (h *Handler) uploadFile(c *gin.Context) (interface{}, error) {
	name := c.Param(paramName)
	fileHeader, err := c.FormFile(uploadFormField)
	if err != nil {
		return nil, caeserrors.NewBadRequest("Missing 'file' field.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, caeserrors.NewInternalError(err.Error())
	}
	defer file.Close()

	// read one byte past the limit so the ingestor can reject oversize
	// content without this handler buffering all of it
	data, err := io.ReadAll(io.LimitReader(file, config.GetUploadMaxBytes()+1))
	if err != nil {
		return nil, caeserrors.NewInternalError(err.Error())
	}

	path, err := h.ingestor.Upload(c.Request.Context(), name, fileHeader.Filename, data)
	if err != nil {
		return nil, err
	}
	return &UploadResponse{
		Filename: fileHeader.Filename,
		Size:     int64(len(data)),
		Path:     path,
	}, nil
}

func (h *Handler) listFiles(c *gin.Context) (interface{}, error) {
	listing, err := h.ingestor.ListFiles(c.Request.Context(), c.Param(paramName))
	if err != nil {
		return nil, err
	}
	return &FilesResponse{Files: listing}, nil
}
