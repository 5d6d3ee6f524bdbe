package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/fieldtask-core/internal/device"
)

// handleListDevices returns every device as a JSON array.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request, _ Request) {
	devices, err := s.devices.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list devices", "error", err)
		writeStatus(w, http.StatusInternalServerError)
		return
	}
	if devices == nil {
		devices = []device.Device{}
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleGetDevice returns a single device, or 404 with an empty body.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request, req Request) {
	dev, err := s.devices.GetByID(r.Context(), req.ID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeStatus(w, http.StatusNotFound)
			return
		}
		s.logger.Error("failed to get device", "device_id", req.ID, "error", err)
		writeStatus(w, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dev)
}
